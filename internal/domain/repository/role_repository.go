package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// RoleRepository persistencia de roles. Los roles se devuelven con sus permisos cargados.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	// First devuelve el rol más antiguo; se usa si el rol por defecto no existe.
	First(ctx context.Context) (*entity.Role, error)
	AddPermission(ctx context.Context, roleID, permissionID string) error
	RemovePermission(ctx context.Context, roleID, permissionID string) error
}

// PermissionRepository persistencia del catálogo de permisos.
type PermissionRepository interface {
	Create(ctx context.Context, p *entity.Permission) error
	GetByID(ctx context.Context, id string) (*entity.Permission, error)
	GetByName(ctx context.Context, name string) (*entity.Permission, error)
	// List filtra por módulo cuando module no está vacío.
	List(ctx context.Context, module string) ([]*entity.Permission, error)
}
