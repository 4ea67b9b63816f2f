package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/route"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// RouteHandler rutas de venta/reparto, sus paradas y asignaciones.
type RouteHandler struct {
	uc  *route.RouteUseCase
	log *logger.Logger
}

// NewRouteHandler construye el handler.
func NewRouteHandler(uc *route.RouteUseCase, log *logger.Logger) *RouteHandler {
	return &RouteHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear ruta con sus clientes
// @Tags         rutas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRouteRequest  true  "Nombre, tipo y paradas"
// @Success      201   {object}  dto.RouteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/rutas [post]
func (h *RouteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRouteRequest
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
// @Summary      Obtener ruta con paradas y asignaciones
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ruta"
// @Success      200  {object}  dto.RouteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rutas/{id} [get]
func (h *RouteHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Listar rutas
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        tipo  query  string  false  "sales o delivery"
// @Success      200   {array}  dto.RouteResponse
// @Router       /api/rutas [get]
func (h *RouteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("tipo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListActive godoc
// @Summary      Rutas activas
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RouteResponse
// @Router       /api/rutas/activas [get]
func (h *RouteHandler) ListActive(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ruta
// @Tags         rutas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la ruta"
// @Param        body  body  dto.UpdateRouteRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.RouteResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/rutas/{id} [put]
func (h *RouteHandler) Update(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var in dto.UpdateRouteRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar ruta
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ruta"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rutas/{id} [delete]
func (h *RouteHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "ruta eliminada"})
}

// AddClient godoc
// @Summary      Agregar cliente a la ruta
// @Tags         rutas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path  string                true   "ID de la ruta"
// @Param        clienteId  path  string                true   "ID del cliente"
// @Param        body       body  dto.RouteStopRequest  false  "order_index"
// @Success      200        {object}  dto.RouteResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/rutas/{id}/clientes/{clienteId} [post]
func (h *RouteHandler) AddClient(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	clientID, ok := requireParam(c, "clienteId")
	if !ok {
		return nil
	}
	var in dto.RouteStopRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, h.log, errInvalidBody)
		}
	}
	in.ClientID = clientID
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.AddClient(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveClient godoc
// @Summary      Quitar cliente de la ruta
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID de la ruta"
// @Param        clienteId  path  string  true  "ID del cliente"
// @Success      200        {object}  dto.MessageResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/rutas/{id}/clientes/{clienteId} [delete]
func (h *RouteHandler) RemoveClient(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	clientID, ok := requireParam(c, "clienteId")
	if !ok {
		return nil
	}
	if err := h.uc.RemoveClient(c.UserContext(), id, clientID); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "cliente removido de la ruta"})
}

// Assign godoc
// @Summary      Asignar ruta a un usuario
// @Tags         rutas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id         path   string                  true   "ID de la ruta"
// @Param        usuarioId  path   string                  true   "ID del usuario"
// @Param        body       body   dto.AssignRouteRequest  false  "Fecha YYYY-MM-DD (vacío = hoy)"
// @Success      201        {object}  dto.AssignmentResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/rutas/{id}/asignar/{usuarioId} [post]
func (h *RouteHandler) Assign(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	userID, ok := requireParam(c, "usuarioId")
	if !ok {
		return nil
	}
	in := dto.AssignRouteRequest{Date: c.Query("date")}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, h.log, errInvalidBody)
		}
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Assign(c.UserContext(), id, userID, in.Date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateAssignment godoc
// @Summary      Cambiar estado de una asignación
// @Tags         rutas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        asignacionId  path  string                       true  "ID de la asignación"
// @Param        body          body  dto.UpdateAssignmentRequest  true  "scheduled, completed o cancelled"
// @Success      200           {object}  dto.AssignmentResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/rutas/asignaciones/{asignacionId} [put]
func (h *RouteHandler) UpdateAssignment(c *fiber.Ctx) error {
	id, ok := requireParam(c, "asignacionId")
	if !ok {
		return nil
	}
	var in dto.UpdateAssignmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.UpdateAssignmentStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Unassign godoc
// @Summary      Eliminar una asignación
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        asignacionId  path  string  true  "ID de la asignación"
// @Success      200           {object}  dto.MessageResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/rutas/asignaciones/{asignacionId} [delete]
func (h *RouteHandler) Unassign(c *fiber.Ctx) error {
	id, ok := requireParam(c, "asignacionId")
	if !ok {
		return nil
	}
	if err := h.uc.Unassign(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "asignación eliminada"})
}

// Optimized godoc
// @Summary      Paradas geolocalizadas en orden de visita
// @Tags         rutas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ruta"
// @Success      200  {array}   dto.RouteStopResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rutas/{id}/optimizada [get]
func (h *RouteHandler) Optimized(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	out, err := h.uc.Optimized(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
