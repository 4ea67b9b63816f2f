package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea solicitada: producto, cantidad y precio unitario pactado.
type OrderLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest pedido nuevo. SellerID vacío = el usuario autenticado.
type CreateOrderRequest struct {
	ClientID  string             `json:"client_id" validate:"required"`
	SellerID  string             `json:"seller_id"`
	OrderDate *time.Time         `json:"order_date"`
	Lines     []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest cambio de estado.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending_delivery delivered rejected cancelled"`
}

// OrderLineResponse línea de un pedido.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido con sus líneas.
type OrderResponse struct {
	ID        string              `json:"id"`
	ClientID  string              `json:"client_id"`
	SellerID  string              `json:"seller_id"`
	OrderDate time.Time           `json:"order_date"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
