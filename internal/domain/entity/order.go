package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderPendingDelivery = "pending_delivery"
	OrderDelivered       = "delivered"
	OrderRejected        = "rejected"
	OrderCancelled       = "cancelled"
)

// ValidOrderStatus indica si el estado pertenece al conjunto cerrado.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPendingDelivery, OrderDelivered, OrderRejected, OrderCancelled:
		return true
	}
	return false
}

// Order pedido de un cliente tomado por un vendedor. Total = suma de subtotales de las líneas.
type Order struct {
	ID        string
	ClientID  string
	SellerID  string
	OrderDate time.Time
	Total     decimal.Decimal
	Status    string
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending el pedido todavía no se entregó ni se canceló.
func (o *Order) IsPending() bool {
	return o.Status == OrderPendingDelivery
}

// OrderLine línea de pedido con el precio unitario vigente al momento de crearlo.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// LineSubtotal precio unitario por cantidad.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
