package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// DeliveryHandler entregas de pedidos y sus cobros.
type DeliveryHandler struct {
	uc  *usecase.DeliveryUseCase
	log *logger.Logger
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *usecase.DeliveryUseCase, log *logger.Logger) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar entrega de un pedido
// @Tags         entregas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "Pedido y observación"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entregas [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
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
// @Summary      Obtener entrega con sus cobros
// @Tags         entregas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/entregas/{id} [get]
func (h *DeliveryHandler) GetByID(c *fiber.Ctx) error {
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

// ListByOrder godoc
// @Summary      Entregas de un pedido
// @Tags         entregas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}   dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pedidos/{id}/entregas [get]
func (h *DeliveryHandler) ListByOrder(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	out, err := h.uc.ListByOrder(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Cerrar entrega
// @Description  delivered marca el pedido como entregado; rejected lo marca como rechazado. Ambos en la misma transacción.
// @Tags         entregas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la entrega"
// @Param        body  body  dto.ResolveDeliveryRequest  true  "Resultado"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/entregas/{id} [put]
func (h *DeliveryHandler) Resolve(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var in dto.ResolveDeliveryRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Resolve(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AddPayment godoc
// @Summary      Registrar cobro sobre una entrega
// @Tags         entregas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la entrega"
// @Param        body  body  dto.CreatePaymentRequest  true  "Monto y método"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/entregas/{id}/pagos [post]
func (h *DeliveryHandler) AddPayment(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var in dto.CreatePaymentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.AddPayment(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
