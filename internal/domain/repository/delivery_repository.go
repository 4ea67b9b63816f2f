package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// DeliveryRepository persistencia de entregas y cobros.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error)
	UpdateOutcome(ctx context.Context, d *entity.Delivery) error

	CreatePayment(ctx context.Context, p *entity.Payment) error
	ListPayments(ctx context.Context, deliveryID string) ([]*entity.Payment, error)
}
