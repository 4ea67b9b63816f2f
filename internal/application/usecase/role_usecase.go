package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// RoleUseCase administración de roles y del catálogo de permisos.
type RoleUseCase struct {
	txRunner RoleTxRunner
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(txRunner RoleTxRunner, roleRepo repository.RoleRepository, permRepo repository.PermissionRepository) *RoleUseCase {
	return &RoleUseCase{txRunner: txRunner, roleRepo: roleRepo, permRepo: permRepo}
}

// ListRoles todos los roles con sus permisos.
func (uc *RoleUseCase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

// CreateRole crea el rol y le asigna los permisos nombrados, todo o nada.
// Un permiso inexistente invalida la petición.
func (uc *RoleUseCase) CreateRole(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	now := time.Now()
	role := &entity.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.RunRole(ctx, func(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository) error {
		existing, err := roleRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: el rol %s ya existe", domain.ErrDuplicate, name)
		}
		if err := roleRepo.Create(ctx, role); err != nil {
			return err
		}
		for _, pname := range in.Permissions {
			p, err := permRepo.GetByName(ctx, pname)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Invalid("permissions", fmt.Sprintf("permiso desconocido '%s'", pname))
			}
			if err := roleRepo.AddPermission(ctx, role.ID, p.ID); err != nil {
				return err
			}
			role.Permissions = append(role.Permissions, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toRoleResponse(role)
	return &out, nil
}

// AssignPermission agrega un permiso existente a un rol.
func (uc *RoleUseCase) AssignPermission(ctx context.Context, roleID, permissionID string) (*dto.RoleResponse, error) {
	return uc.changePermission(ctx, roleID, permissionID, true)
}

// RevokePermission quita un permiso de un rol.
func (uc *RoleUseCase) RevokePermission(ctx context.Context, roleID, permissionID string) (*dto.RoleResponse, error) {
	return uc.changePermission(ctx, roleID, permissionID, false)
}

func (uc *RoleUseCase) changePermission(ctx context.Context, roleID, permissionID string, add bool) (*dto.RoleResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleID)
	}
	p, err := uc.permRepo.GetByID(ctx, permissionID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: permiso %s", domain.ErrNotFound, permissionID)
	}
	if add {
		err = uc.roleRepo.AddPermission(ctx, roleID, permissionID)
	} else {
		err = uc.roleRepo.RemovePermission(ctx, roleID, permissionID)
	}
	if err != nil {
		return nil, err
	}
	role, err = uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	out := toRoleResponse(role)
	return &out, nil
}

// ListPermissions catálogo de permisos, opcionalmente de un módulo.
func (uc *RoleUseCase) ListPermissions(ctx context.Context, module string) ([]dto.PermissionResponse, error) {
	perms, err := uc.permRepo.List(ctx, module)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResponse(*p))
	}
	return out, nil
}

// CreatePermission registra un permiso; el nombre debe tener la forma "<module>.<action>".
func (uc *RoleUseCase) CreatePermission(ctx context.Context, in dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	name := strings.TrimSpace(in.Name)
	module, action, ok := entity.SplitPermissionName(name)
	if !ok {
		return nil, domain.Invalid("name", "formato esperado <module>.<action>")
	}
	existing, err := uc.permRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el permiso %s ya existe", domain.ErrDuplicate, name)
	}
	p := &entity.Permission{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Module:      module,
		Action:      action,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := uc.permRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := toPermissionResponse(*p)
	return &out, nil
}

func toRoleResponse(r *entity.Role) dto.RoleResponse {
	perms := make([]dto.PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}
	return dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
	}
}

func toPermissionResponse(p entity.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Module:      p.Module,
		Action:      p.Action,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}
