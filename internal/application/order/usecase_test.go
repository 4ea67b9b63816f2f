package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	clientID = "cli-1"
	sellerID = "usr-vendedor"
)

type countingObserver struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
}

func (o *countingObserver) OrderCreated() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created++
}

func (o *countingObserver) OrderRejected(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rejected == nil {
		o.rejected = map[string]int{}
	}
	o.rejected[reason]++
}

type fakeReceipts struct{ got order.ReceiptData }

func (f *fakeReceipts) OrderReceipt(_ context.Context, data order.ReceiptData) ([]byte, error) {
	f.got = data
	return []byte("%PDF-fake"), nil
}

func newFixture(t *testing.T) (*memory.Store, *order.OrderUseCase, *countingObserver) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: clientID, Name: "Tienda La 14", NIT: "900123", Active: true}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: sellerID, Username: "vendedor", Email: "v@dist.co", Active: true}))
	obs := &countingObserver{}
	uc := order.NewOrderUseCase(s, s.Orders(), s.Clients(), s.Users(), s.Products(), &fakeReceipts{}, nil).WithObserver(obs)
	return s, uc, obs
}

func addProduct(t *testing.T, s *memory.Store, id string, price string, stock int) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: "Producto " + id, SKU: "SKU-" + id, Price: decimal.RequireFromString(price), Stock: stock, Active: true,
	}))
}

func stockOf(t *testing.T, s *memory.Store, id string) int {
	t.Helper()
	p, err := s.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func line(productID string, qty int, price string) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func countOrders(t *testing.T, s *memory.Store) int {
	t.Helper()
	list, err := s.Orders().List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	return len(list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DescuentaStockYCalculaTotal(t *testing.T) {
	ctx := context.Background()
	s, uc, obs := newFixture(t)
	addProduct(t, s, "P", "10.00", 5)

	out, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("P", 3, "10.00")}})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.RequireFromString("30.00")), "total = %s", out.Total)
	assert.Equal(t, entity.OrderPendingDelivery, out.Status)
	assert.Equal(t, sellerID, out.SellerID)
	assert.Equal(t, 2, stockOf(t, s, "P"))
	assert.Equal(t, 1, obs.created)

	// Segundo pedido por 3 unidades con stock 2: rechazado, stock intacto.
	_, err = uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("P", 3, "10.00")}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "P")
	assert.Equal(t, 2, stockOf(t, s, "P"))
	assert.Equal(t, 1, countOrders(t, s))
	assert.Equal(t, 1, obs.rejected[order.RejectInsufficientStock])
}

func TestCreate_TotalDecimalExacto(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "0.10", 100)
	addProduct(t, s, "B", "0.20", 100)

	out, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 3, "0.10"),
		line("B", 1, "0.20"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "0.50", out.Total.StringFixed(2))
	assert.True(t, out.Total.Equal(decimal.RequireFromString("0.5")))
	require.Len(t, out.Lines, 2)
	assert.Equal(t, "0.30", out.Lines[0].Subtotal.StringFixed(2))
}

func TestCreate_LineaFallidaNoDejaRastro(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "5.00", 10)
	addProduct(t, s, "B", "5.00", 1)

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 4, "5.00"),
		line("B", 2, "5.00"),
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "B", stockErr.ProductID)
	assert.Equal(t, "Producto B", stockErr.ProductName)
	assert.Contains(t, err.Error(), "stock insuficiente para el producto Producto B")
	assert.Equal(t, 10, stockOf(t, s, "A"))
	assert.Equal(t, 1, stockOf(t, s, "B"))
	assert.Zero(t, countOrders(t, s))
}

func TestCreate_CantidadAcumuladaPorProducto(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 3, "1.00"),
		line("A", 3, "1.00"),
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, s, "A"))
}

func TestCreate_ProductoInexistente(t *testing.T) {
	ctx := context.Background()
	s, uc, obs := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 1, "1.00"),
		line("ghost", 1, "1.00"),
	}})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), "ghost")
	assert.Equal(t, 5, stockOf(t, s, "A"))
	assert.Equal(t, 1, obs.rejected[order.RejectProductNotFound])
}

func TestCreate_ProductoInactivoEsInexistente(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	require.NoError(t, s.Products().SoftDelete(ctx, "A"))

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 1, "1.00")}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreate_FalloDePersistenciaRevierte(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	addProduct(t, s, "B", "1.00", 5)
	boom := errors.New("conexión perdida")
	s.FailOn("products.DecrementStock", boom)

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 1, "1.00"),
		line("B", 1, "1.00"),
	}})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, countOrders(t, s))
	assert.Equal(t, 5, stockOf(t, s, "A"))
	assert.Equal(t, 5, stockOf(t, s, "B"))
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)

	cases := map[string]dto.CreateOrderRequest{
		"sin líneas":      {ClientID: clientID},
		"cantidad cero":   {ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 0, "1.00")}},
		"precio negativo": {ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 1, "-1.00")}},
		"producto sin id": {ClientID: clientID, Lines: []dto.OrderLineRequest{line("", 1, "1.00")}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, sellerID, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 5, stockOf(t, s, "A"))
}

func TestCreate_ClienteInexistente(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)

	_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: "nope", Lines: []dto.OrderLineRequest{line("A", 1, "1.00")}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_ConcurrentesPorElStockCompleto(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "P", "10.00", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("P", 5, "10.00")}})
		}(i)
	}
	wg.Wait()

	ok, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, stockOf(t, s, "P"))
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateStatus / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	created, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 2, "1.00")}})
	require.NoError(t, err)

	out, err := uc.UpdateStatus(ctx, created.ID, entity.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, out.Status)
	assert.Equal(t, 3, stockOf(t, s, "A"), "cambiar estado no toca inventario")

	_, err = uc.UpdateStatus(ctx, created.ID, "perdido")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateStatus(ctx, "nope", entity.OrderCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_PendienteRestauraStock(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	addProduct(t, s, "B", "2.00", 4)
	created, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{
		line("A", 2, "1.00"),
		line("B", 4, "2.00"),
		line("A", 1, "1.00"),
	}})
	require.NoError(t, err)
	require.Equal(t, 2, stockOf(t, s, "A"))
	require.Equal(t, 0, stockOf(t, s, "B"))

	require.NoError(t, uc.Delete(ctx, created.ID))
	assert.Equal(t, 5, stockOf(t, s, "A"))
	assert.Equal(t, 4, stockOf(t, s, "B"))
	_, err = uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_NoPendienteNoRestaura(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	created, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 2, "1.00")}})
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, created.ID, entity.OrderDelivered)
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ID))
	assert.Equal(t, 3, stockOf(t, s, "A"))
}

func TestDelete_FalloRevierteRestauracion(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 5)
	created, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 2, "1.00")}})
	require.NoError(t, err)
	s.FailOn("orders.Delete", errors.New("boom"))

	require.Error(t, uc.Delete(ctx, created.ID))
	assert.Equal(t, 3, stockOf(t, s, "A"))
	assert.Equal(t, 1, countOrders(t, s))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListados(t *testing.T) {
	ctx := context.Background()
	s, uc, _ := newFixture(t)
	addProduct(t, s, "A", "1.00", 50)
	date := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, OrderDate: &date, Lines: []dto.OrderLineRequest{line("A", 1, "1.00")}})
		require.NoError(t, err)
	}

	byClient, err := uc.ListByClient(ctx, clientID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, byClient.Items, 2)

	bySeller, err := uc.ListBySeller(ctx, sellerID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, bySeller.Items, 3)

	_, err = uc.ListByClient(ctx, "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.List(ctx, repository.OrderFilter{Status: "raro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceipt_CargaNombresDeProducto(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: clientID, Name: "Tienda", NIT: "1", Active: true}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: sellerID, Username: "v", Email: "v@x.co", Active: true}))
	addProduct(t, s, "A", "1.00", 5)
	receipts := &fakeReceipts{}
	uc := order.NewOrderUseCase(s, s.Orders(), s.Clients(), s.Users(), s.Products(), receipts, nil)

	created, err := uc.Create(ctx, sellerID, dto.CreateOrderRequest{ClientID: clientID, Lines: []dto.OrderLineRequest{line("A", 1, "1.00")}})
	require.NoError(t, err)

	pdf, err := uc.Receipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "Producto A", receipts.got.ProductNames["A"])
	assert.Equal(t, "Tienda", receipts.got.Client.Name)
}
