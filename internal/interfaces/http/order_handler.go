package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// OrderHandler pedidos: alta transaccional, estado, baja y comprobante.
type OrderHandler struct {
	uc  *order.OrderUseCase
	log *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.OrderUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Verifica y descuenta stock en una sola transacción. Si una línea falla no queda nada persistido.
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente, vendedor opcional y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse  "VALIDATION o PRODUCT_NOT_FOUND"
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/pedidos [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con sus líneas
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        cliente_id   query  string  false  "Filtrar por cliente"
// @Param        vendedor_id  query  string  false  "Filtrar por vendedor"
// @Param        estado       query  string  false  "pending_delivery, delivered, rejected, cancelled"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200          {object}  dto.OrderListResponse
// @Router       /api/pedidos [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), repository.OrderFilter{
		ClientID: c.Query("cliente_id"),
		SellerID: c.Query("vendedor_id"),
		Status:   c.Query("estado"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByClient godoc
// @Summary      Pedidos de un cliente
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        clienteId  path   string  true   "ID del cliente"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200        {object}  dto.OrderListResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/pedidos/cliente/{clienteId} [get]
func (h *OrderHandler) ListByClient(c *fiber.Ctx) error {
	clientID, ok := requireParam(c, "clienteId")
	if !ok {
		return nil
	}
	limit, offset := pageParams(c)
	out, err := h.uc.ListByClient(c.UserContext(), clientID, limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Mine godoc
// @Summary      Pedidos tomados por el usuario autenticado
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/pedidos/mios [get]
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListBySeller(c.UserContext(), GetUserID(c), limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         pedidos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id} [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var in dto.UpdateOrderStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar pedido
// @Description  Si el pedido sigue pendiente de entrega se devuelve el stock de cada línea.
// @Tags         pedidos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "pedido eliminado"})
}

// Receipt godoc
// @Summary      Comprobante PDF del pedido
// @Tags         pedidos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id}/pdf [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	pdf, err := h.uc.Receipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="pedido-%s.pdf"`, id))
	return c.Send(pdf)
}
