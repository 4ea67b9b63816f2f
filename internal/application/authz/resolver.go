// Package authz resuelve rol y permisos efectivos de un usuario.
package authz

import (
	"context"
	"fmt"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// Resolver responde preguntas de autorización a partir del rol del usuario.
// Un usuario sin rol, o con un rol inactivo o inexistente, no tiene permisos:
// las consultas devuelven false sin error. Solo un fallo de persistencia produce error.
type Resolver struct {
	roles repository.RoleRepository
}

// NewResolver construye el resolver.
func NewResolver(roles repository.RoleRepository) *Resolver {
	return &Resolver{roles: roles}
}

// RoleOf carga el rol del usuario con su conjunto de permisos. (nil, nil) si no tiene rol efectivo.
func (r *Resolver) RoleOf(ctx context.Context, user *entity.User) (*entity.Role, error) {
	if !user.HasRole() {
		return nil, nil
	}
	role, err := r.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("authz: cargar rol %s: %w", user.RoleID, err)
	}
	if role == nil || !role.Active {
		return nil, nil
	}
	return role, nil
}

// HasPermission coincidencia exacta del nombre contra los permisos del rol.
func (r *Resolver) HasPermission(ctx context.Context, user *entity.User, name string) (bool, error) {
	role, err := r.RoleOf(ctx, user)
	if err != nil {
		return false, err
	}
	return role.HasPermission(name), nil
}

// HasRole compara el nombre del rol del usuario.
func (r *Resolver) HasRole(ctx context.Context, user *entity.User, roleName string) (bool, error) {
	role, err := r.RoleOf(ctx, user)
	if err != nil {
		return false, err
	}
	return role != nil && role.Name == roleName, nil
}

// EffectivePermissions nombres de los permisos activos del usuario.
func (r *Resolver) EffectivePermissions(ctx context.Context, user *entity.User) ([]string, error) {
	role, err := r.RoleOf(ctx, user)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return []string{}, nil
	}
	return role.PermissionNames(), nil
}
