package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func vendedorRole() *Role {
	perms := []string{PermProductsView, PermOrdersCreate, PermOrdersView, PermOrdersUpdate}
	r := &Role{Name: RoleVendedor, Active: true}
	for _, p := range perms {
		r.Permissions = append(r.Permissions, Permission{Name: p, Active: true})
	}
	return r
}

func TestRole_HasPermission_CoincidenciaExacta(t *testing.T) {
	r := vendedorRole()

	assert.True(t, r.HasPermission("orders.create"))
	assert.False(t, r.HasPermission("orders.manage"), "vendedor no gestiona pedidos")
	assert.False(t, r.HasPermission("orders"), "no hay coincidencia por prefijo")
	assert.False(t, r.HasPermission("ORDERS.CREATE"), "la comparación distingue mayúsculas")
}

func TestRole_HasPermission_RolNil(t *testing.T) {
	var r *Role
	assert.False(t, r.HasPermission("orders.view"))
	assert.Nil(t, r.PermissionNames())
}

func TestRole_PermisoInactivoNoCuenta(t *testing.T) {
	r := &Role{Permissions: []Permission{{Name: PermUsersView, Active: false}}}
	assert.False(t, r.HasPermission(PermUsersView))
	assert.Empty(t, r.PermissionNames())
}

func TestValidPermissionName(t *testing.T) {
	assert.True(t, ValidPermissionName("orders.manage"))
	assert.True(t, ValidPermissionName("system.settings"))
	assert.False(t, ValidPermissionName("orders"))
	assert.False(t, ValidPermissionName("orders.manage.all"))
	assert.False(t, ValidPermissionName(".manage"))
	assert.False(t, ValidPermissionName("Orders.Manage"))

	module, action, ok := SplitPermissionName("reports.generate")
	assert.True(t, ok)
	assert.Equal(t, "reports", module)
	assert.Equal(t, "generate", action)
}
