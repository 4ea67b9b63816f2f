// Package bootstrap datos iniciales del sistema: roles, permisos, administrador y carga de productos.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// PermissionSeed permiso del catálogo base.
type PermissionSeed struct {
	Name        string
	Description string
	Module      string
	Action      string
}

// RoleSeed rol base con los nombres de sus permisos.
type RoleSeed struct {
	Name        string
	Description string
	Permissions []string
}

// Permissions catálogo base de permisos.
var Permissions = []PermissionSeed{
	{"users.view", "Ver usuarios", "users", "read"},
	{"users.create", "Crear usuarios", "users", "create"},
	{"users.update", "Actualizar usuarios", "users", "update"},
	{"users.delete", "Eliminar usuarios", "users", "delete"},
	{"users.manage", "Gestionar usuarios completo", "users", "manage"},

	{"products.view", "Ver productos", "products", "read"},
	{"products.create", "Crear productos", "products", "create"},
	{"products.update", "Actualizar productos", "products", "update"},
	{"products.delete", "Eliminar productos", "products", "delete"},
	{"products.manage", "Gestionar productos completo", "products", "manage"},

	{"orders.view", "Ver pedidos", "orders", "read"},
	{"orders.create", "Crear pedidos", "orders", "create"},
	{"orders.update", "Actualizar pedidos", "orders", "update"},
	{"orders.delete", "Eliminar pedidos", "orders", "delete"},
	{"orders.manage", "Gestionar pedidos completo", "orders", "manage"},

	{"reports.view", "Ver reportes", "reports", "read"},
	{"reports.generate", "Generar reportes", "reports", "create"},

	{"system.settings", "Configurar sistema", "system", "manage"},
}

// Roles roles base y su matriz de permisos.
var Roles = []RoleSeed{
	{entity.RoleGerente, "Administra usuarios y consulta reportes",
		[]string{entity.PermUsersManage, entity.PermReportsView, entity.PermReportsGenerate, entity.PermSystemSettings}},
	{entity.RoleAdministrador, "Gestiona rutas y productos",
		[]string{entity.PermProductsManage, entity.PermOrdersManage, entity.PermReportsView}},
	{entity.RoleVendedor, "Consulta rutas de venta, registra clientes y pedidos",
		[]string{entity.PermProductsView, entity.PermOrdersCreate, entity.PermOrdersView, entity.PermOrdersUpdate}},
	{entity.RoleRepartidor, "Consulta rutas de entrega, confirma entregas y registra cobros",
		[]string{entity.PermOrdersView, entity.PermOrdersUpdate}},
	{entity.RoleUsuarioSistema, "Rol general para autenticación",
		[]string{entity.PermUsersView}},
}

// SeedReport qué creó una ejecución de Seed.
type SeedReport struct {
	RolesCreated       int
	PermissionsCreated int
	Assignments        int
}

// Seed crea roles, permisos y asignaciones que falten, en una sola transacción.
// Es idempotente: lo existente no se toca.
func Seed(ctx context.Context, runner usecase.RoleTxRunner) (*SeedReport, error) {
	report := &SeedReport{}
	err := runner.RunRole(ctx, func(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository) error {
		*report = SeedReport{}
		base := time.Now()

		permIDs := make(map[string]string, len(Permissions))
		for i, ps := range Permissions {
			p, err := permRepo.GetByName(ctx, ps.Name)
			if err != nil {
				return err
			}
			if p == nil {
				p = &entity.Permission{
					ID:          uuid.New().String(),
					Name:        ps.Name,
					Description: ps.Description,
					Module:      ps.Module,
					Action:      ps.Action,
					Active:      true,
					CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
				}
				if err := permRepo.Create(ctx, p); err != nil {
					return fmt.Errorf("permiso %s: %w", ps.Name, err)
				}
				report.PermissionsCreated++
			}
			permIDs[ps.Name] = p.ID
		}

		for i, rs := range Roles {
			role, err := roleRepo.GetByName(ctx, rs.Name)
			if err != nil {
				return err
			}
			if role == nil {
				at := base.Add(time.Duration(i) * time.Millisecond)
				role = &entity.Role{
					ID:          uuid.New().String(),
					Name:        rs.Name,
					Description: rs.Description,
					Active:      true,
					CreatedAt:   at,
					UpdatedAt:   at,
				}
				if err := roleRepo.Create(ctx, role); err != nil {
					return fmt.Errorf("rol %s: %w", rs.Name, err)
				}
				report.RolesCreated++
			}
			for _, name := range rs.Permissions {
				if role.HasPermission(name) {
					continue
				}
				if err := roleRepo.AddPermission(ctx, role.ID, permIDs[name]); err != nil {
					return fmt.Errorf("asignar %s a %s: %w", name, rs.Name, err)
				}
				report.Assignments++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
