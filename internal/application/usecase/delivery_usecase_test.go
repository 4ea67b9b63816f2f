package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
)

func deliveryFixture(t *testing.T) (*memory.Store, *usecase.DeliveryUseCase) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "c1", Name: "Tienda", NIT: "1", Active: true}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "o1", ClientID: "c1", Status: entity.OrderPendingDelivery, Total: decimal.NewFromInt(30), OrderDate: time.Now()}))
	require.NoError(t, s.Orders().Create(ctx, &entity.Order{ID: "o2", ClientID: "c1", Status: entity.OrderCancelled, OrderDate: time.Now()}))
	return s, usecase.NewDeliveryUseCase(s, s.Deliveries(), s.Orders())
}

func orderStatus(t *testing.T, s *memory.Store, id string) string {
	t.Helper()
	o, err := s.Orders().GetByID(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func TestDelivery_EntregadaMarcaPedido(t *testing.T) {
	ctx := context.Background()
	s, uc := deliveryFixture(t)

	d, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryPending, d.Status)
	assert.Nil(t, d.DeliveredAt)

	out, err := uc.Resolve(ctx, d.ID, dto.ResolveDeliveryRequest{Status: entity.DeliveryDelivered, Observation: "recibió el dueño"})
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryDelivered, out.Status)
	assert.NotNil(t, out.DeliveredAt)
	assert.Equal(t, entity.OrderDelivered, orderStatus(t, s, "o1"))

	_, err = uc.Resolve(ctx, d.ID, dto.ResolveDeliveryRequest{Status: entity.DeliveryRejected})
	assert.ErrorIs(t, err, domain.ErrConflict, "una entrega resuelta no se vuelve a resolver")
}

func TestDelivery_RechazadaMarcaPedido(t *testing.T) {
	ctx := context.Background()
	s, uc := deliveryFixture(t)
	d, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o1"})
	require.NoError(t, err)

	out, err := uc.Resolve(ctx, d.ID, dto.ResolveDeliveryRequest{Status: entity.DeliveryRejected})
	require.NoError(t, err)
	assert.Nil(t, out.DeliveredAt)
	assert.Equal(t, entity.OrderRejected, orderStatus(t, s, "o1"))
}

func TestDelivery_FalloRevierteAmbos(t *testing.T) {
	ctx := context.Background()
	s, uc := deliveryFixture(t)
	d, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o1"})
	require.NoError(t, err)
	s.FailOn("orders.UpdateStatus", errors.New("boom"))

	_, err = uc.Resolve(ctx, d.ID, dto.ResolveDeliveryRequest{Status: entity.DeliveryDelivered})
	require.Error(t, err)

	got, err := uc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryPending, got.Status)
	assert.Equal(t, entity.OrderPendingDelivery, orderStatus(t, s, "o1"))
}

func TestDelivery_PedidoNoPendiente(t *testing.T) {
	ctx := context.Background()
	_, uc := deliveryFixture(t)

	_, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o2"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelivery_PedidoCanceladoNoSeResuelve(t *testing.T) {
	ctx := context.Background()
	s, uc := deliveryFixture(t)
	d, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o1"})
	require.NoError(t, err)
	require.NoError(t, s.Orders().UpdateStatus(ctx, "o1", entity.OrderCancelled, time.Now()))

	for _, status := range []string{entity.DeliveryDelivered, entity.DeliveryRejected} {
		_, err = uc.Resolve(ctx, d.ID, dto.ResolveDeliveryRequest{Status: status})
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, entity.OrderCancelled, orderStatus(t, s, "o1"))

	got, err := uc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryPending, got.Status)
}

func TestDelivery_Cobros(t *testing.T) {
	ctx := context.Background()
	_, uc := deliveryFixture(t)
	d, err := uc.Create(ctx, "usr-rep", dto.CreateDeliveryRequest{OrderID: "o1"})
	require.NoError(t, err)

	p, err := uc.AddPayment(ctx, d.ID, dto.CreatePaymentRequest{Amount: decimal.RequireFromString("30.00"), Method: entity.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, p.Status)

	_, err = uc.AddPayment(ctx, d.ID, dto.CreatePaymentRequest{Amount: decimal.Zero, Method: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AddPayment(ctx, d.ID, dto.CreatePaymentRequest{Amount: decimal.NewFromInt(1), Method: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AddPayment(ctx, "nope", dto.CreatePaymentRequest{Amount: decimal.NewFromInt(1), Method: entity.PaymentCard})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Payments, 1)
}
