package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// DeliveryUseCase registro de entregas de pedidos y sus cobros.
type DeliveryUseCase struct {
	txRunner  DeliveryTxRunner
	repo      repository.DeliveryRepository
	orderRepo repository.OrderRepository
	now       func() time.Time
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(txRunner DeliveryTxRunner, repo repository.DeliveryRepository, orderRepo repository.OrderRepository) *DeliveryUseCase {
	return &DeliveryUseCase{txRunner: txRunner, repo: repo, orderRepo: orderRepo, now: time.Now}
}

// Create abre una entrega pendiente. Solo pedidos en pending_delivery admiten entregas.
func (uc *DeliveryUseCase) Create(ctx context.Context, delivererID string, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: pedido %s", domain.ErrNotFound, in.OrderID)
	}
	if !order.IsPending() {
		return nil, fmt.Errorf("%w: el pedido está en estado %s", domain.ErrConflict, order.Status)
	}
	d := &entity.Delivery{
		ID:          uuid.New().String(),
		OrderID:     order.ID,
		DelivererID: delivererID,
		Status:      entity.DeliveryPending,
		Observation: in.Observation,
		CreatedAt:   uc.now(),
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return toDeliveryResponse(d, nil), nil
}

// Resolve cierra la entrega como entregada o rechazada y mueve el pedido al mismo estado.
// El pedido debe seguir en pending_delivery. Ambos cambios ocurren en una sola transacción.
func (uc *DeliveryUseCase) Resolve(ctx context.Context, id string, in dto.ResolveDeliveryRequest) (*dto.DeliveryResponse, error) {
	if in.Status != entity.DeliveryDelivered && in.Status != entity.DeliveryRejected {
		return nil, domain.Invalid("status", "debe ser delivered o rejected")
	}
	var out *entity.Delivery
	err := uc.txRunner.RunDelivery(ctx, func(orderRepo repository.OrderRepository, deliveryRepo repository.DeliveryRepository) error {
		d, err := deliveryRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: entrega %s", domain.ErrNotFound, id)
		}
		if d.Status != entity.DeliveryPending {
			return fmt.Errorf("%w: la entrega ya fue resuelta", domain.ErrConflict)
		}
		order, err := orderRepo.GetForUpdate(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: pedido %s", domain.ErrNotFound, d.OrderID)
		}
		if !order.IsPending() {
			return fmt.Errorf("%w: el pedido está en estado %s", domain.ErrConflict, order.Status)
		}
		now := uc.now()
		d.Status = in.Status
		if in.Observation != "" {
			d.Observation = in.Observation
		}
		if in.Status == entity.DeliveryDelivered {
			d.DeliveredAt = &now
		}
		if err := deliveryRepo.UpdateOutcome(ctx, d); err != nil {
			return err
		}
		orderStatus := entity.OrderDelivered
		if in.Status == entity.DeliveryRejected {
			orderStatus = entity.OrderRejected
		}
		if err := orderRepo.UpdateStatus(ctx, order.ID, orderStatus, now); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	payments, err := uc.repo.ListPayments(ctx, out.ID)
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(out, payments), nil
}

// AddPayment registra un cobro sobre la entrega. Sin estado explícito queda como completed.
func (uc *DeliveryUseCase) AddPayment(ctx context.Context, deliveryID string, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "debe ser mayor que cero")
	}
	if !entity.ValidPaymentMethod(in.Method) {
		return nil, domain.Invalid("method", "método de pago desconocido")
	}
	status := in.Status
	if status == "" {
		status = entity.PaymentCompleted
	}
	if !entity.ValidPaymentStatus(status) {
		return nil, domain.Invalid("status", "estado de pago desconocido")
	}
	d, err := uc.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: entrega %s", domain.ErrNotFound, deliveryID)
	}
	p := &entity.Payment{
		ID:         uuid.New().String(),
		DeliveryID: d.ID,
		Amount:     in.Amount.Round(2),
		Method:     in.Method,
		Status:     status,
		PaidAt:     uc.now(),
	}
	if err := uc.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	return &out, nil
}

// Get entrega con sus cobros.
func (uc *DeliveryUseCase) Get(ctx context.Context, id string) (*dto.DeliveryResponse, error) {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(d, payments), nil
}

// ListByOrder entregas de un pedido, con sus cobros.
func (uc *DeliveryUseCase) ListByOrder(ctx context.Context, orderID string) ([]dto.DeliveryResponse, error) {
	deliveries, err := uc.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		payments, err := uc.repo.ListPayments(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toDeliveryResponse(d, payments))
	}
	return out, nil
}

func toDeliveryResponse(d *entity.Delivery, payments []*entity.Payment) *dto.DeliveryResponse {
	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, toPaymentResponse(p))
	}
	return &dto.DeliveryResponse{
		ID:          d.ID,
		OrderID:     d.OrderID,
		DelivererID: d.DelivererID,
		Status:      d.Status,
		Observation: d.Observation,
		DeliveredAt: d.DeliveredAt,
		Payments:    items,
		CreatedAt:   d.CreatedAt,
	}
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:         p.ID,
		DeliveryID: p.DeliveryID,
		Amount:     p.Amount,
		Method:     p.Method,
		Status:     p.Status,
		PaidAt:     p.PaidAt,
	}
}
