package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// RoleHandler roles, permisos y su matriz (rol administrador).
type RoleHandler struct {
	uc  *usecase.RoleUseCase
	log *logger.Logger
}

// NewRoleHandler construye el handler.
func NewRoleHandler(uc *usecase.RoleUseCase, log *logger.Logger) *RoleHandler {
	return &RoleHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.RoleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListRoles(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear rol
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRoleRequest  true  "Nombre, descripción y permisos"
// @Success      201   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.CreateRole(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AssignPermission godoc
// @Summary      Asignar permiso a un rol
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del rol"
// @Param        body  body  dto.AssignPermissionRequest  true  "permission_id"
// @Success      200   {object}  dto.RoleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/permisos [post]
func (h *RoleHandler) AssignPermission(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	var in dto.AssignPermissionRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.AssignPermission(c.UserContext(), id, in.PermissionID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RevokePermission godoc
// @Summary      Quitar permiso a un rol
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Param        id        path  string  true  "ID del rol"
// @Param        permisoId path  string  true  "ID del permiso"
// @Success      200  {object}  dto.RoleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/permisos/{permisoId} [delete]
func (h *RoleHandler) RevokePermission(c *fiber.Ctx) error {
	id, ok := requireParam(c, "id")
	if !ok {
		return nil
	}
	permID, ok := requireParam(c, "permisoId")
	if !ok {
		return nil
	}
	out, err := h.uc.RevokePermission(c.UserContext(), id, permID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListPermissions godoc
// @Summary      Listar permisos
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Param        modulo  query  string  false  "Filtrar por módulo (users, products, ...)"
// @Success      200     {array}   dto.PermissionResponse
// @Router       /api/permisos [get]
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	out, err := h.uc.ListPermissions(c.UserContext(), c.Query("modulo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreatePermission godoc
// @Summary      Crear permiso (formato modulo.accion)
// @Tags         roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePermissionRequest  true  "Nombre y descripción"
// @Success      201   {object}  dto.PermissionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/permisos [post]
func (h *RoleHandler) CreatePermission(c *fiber.Ctx) error {
	var in dto.CreatePermissionRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.CreatePermission(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
