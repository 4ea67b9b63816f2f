package entity

import (
	"regexp"
	"strings"
	"time"
)

// Nombres de los roles que se siembran con la base de datos.
const (
	RoleGerente        = "gerente"
	RoleAdministrador  = "administrador"
	RoleVendedor       = "vendedor"
	RoleRepartidor     = "repartidor"
	RoleUsuarioSistema = "usuario_sistema"
)

// DefaultRole rol asignado en el auto-registro.
const DefaultRole = RoleUsuarioSistema

// Capacidades usadas por los guards de la API.
const (
	PermUsersView       = "users.view"
	PermUsersManage     = "users.manage"
	PermProductsView    = "products.view"
	PermProductsManage  = "products.manage"
	PermOrdersCreate    = "orders.create"
	PermOrdersView      = "orders.view"
	PermOrdersUpdate    = "orders.update"
	PermOrdersManage    = "orders.manage"
	PermReportsView     = "reports.view"
	PermReportsGenerate = "reports.generate"
	PermSystemSettings  = "system.settings"
)

var permissionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// Permission capacidad nombrada "<module>.<action>".
type Permission struct {
	ID          string
	Name        string
	Description string
	Module      string
	Action      string
	Active      bool
	CreatedAt   time.Time
}

// ValidPermissionName comprueba el formato "<module>.<action>".
func ValidPermissionName(name string) bool {
	return permissionNamePattern.MatchString(name)
}

// SplitPermissionName separa módulo y acción. ok=false si el formato no es válido.
func SplitPermissionName(name string) (module, action string, ok bool) {
	if !ValidPermissionName(name) {
		return "", "", false
	}
	parts := strings.SplitN(name, ".", 2)
	return parts[0], parts[1], true
}

// Role conjunto nombrado de permisos.
type Role struct {
	ID          string
	Name        string
	Description string
	Active      bool
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission coincidencia exacta de nombre; un permiso inactivo no cuenta.
func (r *Role) HasPermission(name string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p.Active && p.Name == name {
			return true
		}
	}
	return false
}

// PermissionNames nombres de los permisos activos del rol.
func (r *Role) PermissionNames() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if p.Active {
			out = append(out, p.Name)
		}
	}
	return out
}
