package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update guarda los datos descriptivos y el estado; el stock solo cambia con SetStock,
	// DecrementStock o IncrementStock.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error)
	SoftDelete(ctx context.Context, id string) error

	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// DecrementStock resta qty; devuelve domain.ErrInsufficientStock si dejaría stock negativo.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
	// SetStock fija el stock a un valor absoluto (ajuste manual de inventario).
	SetStock(ctx context.Context, id string, stock int) error
}
