package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var (
	_ repository.RoleRepository       = (*RoleRepo)(nil)
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
)

const (
	roleColumns       = `id, name, description, active, created_at, updated_at`
	permissionColumns = `id, name, description, module, action, active, created_at`
)

// RoleRepo roles con sus permisos cargados vía role_permissions.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el repo.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, role.ID, role.Name, role.Description, role.Active, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rol %s", domain.ErrDuplicate, role.Name)
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

func (r *RoleRepo) First(ctx context.Context) (*entity.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at, name LIMIT 1`)
}

func (r *RoleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Role, error) {
	var role entity.Role
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&role.ID, &role.Name, &role.Description, &role.Active, &role.CreatedAt, &role.UpdatedAt,
	)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	perms, err := r.permissionsOf(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Role, error) {
		var role entity.Role
		err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Active, &role.CreatedAt, &role.UpdatedAt)
		return &role, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan role: %w", err)
	}
	for _, role := range roles {
		if role.Permissions, err = r.permissionsOf(ctx, role.ID); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *RoleRepo) permissionsOf(ctx context.Context, roleID string) ([]entity.Permission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.description, p.module, p.action, p.active, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name`, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	perms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Permission, error) {
		p, err := scanPermission(row)
		if err != nil {
			return entity.Permission{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan permission: %w", err)
	}
	return perms, nil
}

// AddPermission idempotente: asignar dos veces el mismo permiso no falla.
func (r *RoleRepo) AddPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING`, roleID, permissionID)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add role permission: %w", err)
	}
	return nil
}

func (r *RoleRepo) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("remove role permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PermissionRepo catálogo de permisos.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el repo.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

func (r *PermissionRepo) Create(ctx context.Context, p *entity.Permission) error {
	query := `
		INSERT INTO permissions (id, name, description, module, action, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, p.Module, p.Action, p.Active, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: permiso %s", domain.ErrDuplicate, p.Name)
		}
		return fmt.Errorf("insert permission: %w", err)
	}
	return nil
}

func (r *PermissionRepo) GetByID(ctx context.Context, id string) (*entity.Permission, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
}

func (r *PermissionRepo) GetByName(ctx context.Context, name string) (*entity.Permission, error) {
	return r.getOne(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE name = $1`, name)
}

func (r *PermissionRepo) getOne(ctx context.Context, query string, arg any) (*entity.Permission, error) {
	p, err := scanPermission(r.q.QueryRow(ctx, query, arg))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return p, nil
}

func (r *PermissionRepo) List(ctx context.Context, module string) ([]*entity.Permission, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+permissionColumns+`
		FROM permissions
		WHERE ($1::text = '' OR module = $1)
		ORDER BY name`, module)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Permission, error) {
		return scanPermission(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan permission: %w", err)
	}
	return out, nil
}

func scanPermission(row pgx.Row) (*entity.Permission, error) {
	var p entity.Permission
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Module, &p.Action, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
