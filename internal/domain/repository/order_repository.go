package repository

import (
	"context"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// OrderFilter filtros opcionales del listado de pedidos.
type OrderFilter struct {
	ClientID string
	SellerID string
	Status   string
	Limit    int
	Offset   int
}

// OrderRepository persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	// GetByID devuelve el pedido con sus líneas.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la fila del pedido.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	// Delete borra el pedido junto con líneas, entregas y cobros asociados.
	Delete(ctx context.Context, id string) error
}
