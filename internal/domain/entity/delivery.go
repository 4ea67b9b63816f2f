package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una entrega.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryRejected  = "rejected"
)

// Métodos y estados de cobro.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"

	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentVoided    = "voided"
)

// ValidPaymentMethod método de pago conocido.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

// ValidPaymentStatus estado de cobro conocido.
func ValidPaymentStatus(s string) bool {
	return s == PaymentCompleted || s == PaymentPending || s == PaymentVoided
}

// Delivery resultado de la visita de un repartidor para un pedido.
type Delivery struct {
	ID          string
	OrderID     string
	DelivererID string
	DeliveredAt *time.Time
	Status      string
	Observation string
	CreatedAt   time.Time
}

// Payment cobro registrado sobre una entrega.
type Payment struct {
	ID         string
	DeliveryID string
	Amount     decimal.Decimal
	Method     string
	Status     string
	PaidAt     time.Time
}
