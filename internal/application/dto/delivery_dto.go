package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDeliveryRequest abre una entrega pendiente para un pedido.
type CreateDeliveryRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	Observation string `json:"observation" validate:"max=500"`
}

// ResolveDeliveryRequest resultado de la visita.
type ResolveDeliveryRequest struct {
	Status      string `json:"status" validate:"required,oneof=delivered rejected"`
	Observation string `json:"observation" validate:"max=500"`
}

// CreatePaymentRequest cobro sobre una entrega.
type CreatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required,oneof=cash card transfer"`
	Status string          `json:"status" validate:"omitempty,oneof=completed pending voided"`
}

// PaymentResponse salida de un cobro.
type PaymentResponse struct {
	ID         string          `json:"id"`
	DeliveryID string          `json:"delivery_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Status     string          `json:"status"`
	PaidAt     time.Time       `json:"paid_at"`
}

// DeliveryResponse salida de una entrega con sus cobros.
type DeliveryResponse struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	DelivererID string            `json:"deliverer_id"`
	Status      string            `json:"status"`
	Observation string            `json:"observation"`
	DeliveredAt *time.Time        `json:"delivered_at"`
	Payments    []PaymentResponse `json:"payments"`
	CreatedAt   time.Time         `json:"created_at"`
}
