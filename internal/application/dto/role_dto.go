package dto

import "time"

// CreateRoleRequest alta de rol con permisos opcionales (por nombre).
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// CreatePermissionRequest alta de permiso "<module>.<action>".
type CreatePermissionRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// AssignPermissionRequest agrega un permiso existente a un rol.
type AssignPermissionRequest struct {
	PermissionID string `json:"permission_id" validate:"required,uuid"`
}

// PermissionResponse salida de un permiso.
type PermissionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleResponse salida de un rol con sus permisos.
type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Active      bool                 `json:"active"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   time.Time            `json:"created_at"`
}
