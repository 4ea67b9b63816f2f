package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id string, stock int) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: "Producto " + id, SKU: "SKU-" + id, Price: decimal.NewFromInt(10), Stock: stock, Active: true,
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRunOrder_ErrorRevierteTodo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", 5)

	boom := errors.New("boom")
	err := s.RunOrder(ctx, func(products repository.ProductRepository, _ repository.OrderRepository) error {
		require.NoError(t, products.DecrementStock(ctx, "p1", 3))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "el stock debe volver al valor previo")
}

func TestRunOrder_CommitPersiste(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", 5)

	err := s.RunOrder(ctx, func(products repository.ProductRepository, _ repository.OrderRepository) error {
		return products.DecrementStock(ctx, "p1", 2)
	})
	require.NoError(t, err)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 3, p.Stock)
}

func TestFailOn_InyectaError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("db caída")
	s.FailOn("products.GetByID", boom)

	_, err := s.Products().GetByID(ctx, "x")
	assert.ErrorIs(t, err, boom)

	s.FailOn("products.GetByID", nil)
	p, err := s.Products().GetByID(ctx, "x")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repos
// ──────────────────────────────────────────────────────────────────────────────

func TestDecrementStock_NoPermiteNegativo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", 2)

	err := s.Products().DecrementStock(ctx, "p1", 3)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, "Producto p1", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
}

func TestProducts_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", 1)

	err := s.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-p1", Active: true})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestGetByID_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", 5)

	p, _ := s.Products().GetByID(ctx, "p1")
	p.Stock = 100

	again, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, 5, again.Stock, "modificar la copia no debe alterar el store")
}

func TestRoles_PermisosCargados(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Permissions().Create(ctx, &entity.Permission{ID: "perm1", Name: "orders.create", Module: "orders", Action: "create", Active: true}))
	require.NoError(t, s.Roles().Create(ctx, &entity.Role{ID: "r1", Name: entity.RoleVendedor, Active: true}))
	require.NoError(t, s.Roles().AddPermission(ctx, "r1", "perm1"))
	require.NoError(t, s.Roles().AddPermission(ctx, "r1", "perm1"), "asignar dos veces es idempotente")

	role, err := s.Roles().GetByName(ctx, entity.RoleVendedor)
	require.NoError(t, err)
	require.Len(t, role.Permissions, 1)
	assert.True(t, role.HasPermission("orders.create"))

	require.NoError(t, s.Roles().RemovePermission(ctx, "r1", "perm1"))
	role, _ = s.Roles().GetByID(ctx, "r1")
	assert.False(t, role.HasPermission("orders.create"))
}

func TestOrders_DeleteBorraEntregasYCobros(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Tienda", NIT: "900", Active: true}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "o1", ClientID: "c1", Status: entity.OrderPendingDelivery}))
	require.NoError(t, s.Deliveries().Create(ctx, &entity.Delivery{ID: "d1", OrderID: "o1", Status: entity.DeliveryPending}))
	require.NoError(t, s.Deliveries().CreatePayment(ctx, &entity.Payment{ID: "pay1", DeliveryID: "d1", Amount: decimal.NewFromInt(5)}))

	require.NoError(t, s.Orders().Delete(ctx, "o1"))

	d, err := s.Deliveries().GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, d)
	payments, err := s.Deliveries().ListPayments(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRoutes_ListClientsOrdenadoPorIndice(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Routes().Create(ctx, &entity.Route{ID: "r1", Name: "Norte", Type: entity.RouteTypeSales, Active: true}))
	for i, id := range []string{"c3", "c1", "c2"} {
		require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: id, Name: id, NIT: id, Active: true}))
		require.NoError(t, s.Routes().AddClient(ctx, &entity.RouteClient{ID: "rc" + id, RouteID: "r1", ClientID: id, OrderIndex: 3 - i}))
	}

	stops, err := s.Routes().ListClients(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{stops[0].OrderIndex, stops[1].OrderIndex, stops[2].OrderIndex})
	assert.NotNil(t, stops[0].Client)

	assert.ErrorIs(t, s.Routes().RemoveClient(ctx, "r1", "nope"), domain.ErrNotFound)
}

func TestAnalytics_SalesBetweenIntervaloSemiabierto(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Tienda", NIT: "900", Active: true}))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "o1", ClientID: "c1", OrderDate: day, Total: decimal.NewFromInt(30)}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "o2", ClientID: "c1", OrderDate: day.AddDate(0, 0, 1), Total: decimal.NewFromInt(7)}))

	total, err := s.Analytics().SalesBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(30)), "got %s", total)
}
