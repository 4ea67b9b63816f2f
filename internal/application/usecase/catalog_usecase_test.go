package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

func ptr[T any](v T) *T { return &v }

func newProductUC() *usecase.ProductUseCase {
	s := memory.NewStore()
	return usecase.NewProductUseCase(s, s.Products())
}

// interleavedRunner ejecuta la unidad sin el lock del store y corre between justo
// después de leer el producto, como haría un pedido concurrente sin bloqueo de fila.
type interleavedRunner struct {
	store   *memory.Store
	between func()
}

func (r interleavedRunner) RunProduct(_ context.Context, fn func(repository.ProductRepository) error) error {
	return fn(&interleavedRepo{ProductRepository: r.store.Products(), between: r.between})
}

type interleavedRepo struct {
	repository.ProductRepository
	between func()
}

func (r *interleavedRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductRepository.GetForUpdate(ctx, id)
	if err == nil && r.between != nil {
		r.between()
		r.between = nil
	}
	return p, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_CrearYActualizar(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := usecase.NewProductUseCase(s, s.Products())

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Arroz 500g", SKU: "ARR-500", Price: decimal.RequireFromString("2500.456"), Stock: 10})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, "2500.46", p.Price.StringFixed(2))

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Otro", SKU: "ARR-500", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	up, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Stock: ptr(25), Name: ptr("Arroz 1kg")})
	require.NoError(t, err)
	assert.Equal(t, 25, up.Stock)
	assert.Equal(t, "Arroz 1kg", up.Name)

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Stock: ptr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_RenombrarNoPisaElDescuentoDeUnPedido(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	p, err := usecase.NewProductUseCase(s, s.Products()).
		Create(ctx, dto.CreateProductRequest{Name: "Aceite", SKU: "ACE-1", Price: decimal.NewFromInt(10), Stock: 5})
	require.NoError(t, err)

	sellAll := func() error {
		return s.RunOrder(ctx, func(products repository.ProductRepository, _ repository.OrderRepository) error {
			return products.DecrementStock(ctx, p.ID, 5)
		})
	}
	runner := interleavedRunner{store: s, between: func() { require.NoError(t, sellAll()) }}
	uc := usecase.NewProductUseCase(runner, s.Products())

	up, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: ptr("Aceite 1L")})
	require.NoError(t, err)
	assert.Equal(t, "Aceite 1L", up.Name)

	stored, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock, "el renombre no devuelve unidades vendidas")
	assert.ErrorIs(t, sellAll(), domain.ErrInsufficientStock)
}

func TestProduct_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "X", SKU: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "X", SKU: "X", Stock: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_BorradoLogico(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC()
	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Sal", SKU: "SAL", Price: decimal.NewFromInt(900), Stock: 1})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, p.ID))

	active, err := uc.List(ctx, true, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, active.Items)
	all, err := uc.List(ctx, false, 20, 0)
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.False(t, all.Items[0].Active)

	assert.ErrorIs(t, uc.Delete(ctx, "nope"), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CrearConCoordenadas(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewClientUseCase(memory.NewStore().Clients())

	c, err := uc.Create(ctx, dto.CreateClientRequest{Name: "Tienda", NIT: "900123-4", Latitude: ptr(4.711), Longitude: ptr(-74.072)})
	require.NoError(t, err)
	require.NotNil(t, c.Latitude)
	assert.InDelta(t, 4.711, *c.Latitude, 1e-9)

	_, err = uc.Create(ctx, dto.CreateClientRequest{Name: "Otra", NIT: "900123-4"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestClient_CoordenadasFueraDeRango(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewClientUseCase(memory.NewStore().Clients())

	_, err := uc.Create(ctx, dto.CreateClientRequest{Name: "X", NIT: "1", Latitude: ptr(91.0), Longitude: ptr(0.0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateClientRequest{Name: "X", NIT: "2", Latitude: ptr(0.0), Longitude: ptr(-180.5)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, dto.CreateClientRequest{Name: "X", NIT: "3"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, c.ID, dto.UpdateClientRequest{Latitude: ptr(-90.1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_ActualizarNITDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewClientUseCase(memory.NewStore().Clients())
	_, err := uc.Create(ctx, dto.CreateClientRequest{Name: "A", NIT: "1"})
	require.NoError(t, err)
	b, err := uc.Create(ctx, dto.CreateClientRequest{Name: "B", NIT: "2"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, b.ID, dto.UpdateClientRequest{NIT: ptr("1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, uc.Delete(ctx, b.ID))
	got, err := uc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}
