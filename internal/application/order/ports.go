package order

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repos de productos y pedidos.
// Si fn devuelve error no queda ningún efecto persistido.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// ReceiptData datos que necesita el comprobante de un pedido.
type ReceiptData struct {
	Order        *entity.Order
	Client       *entity.Client
	Seller       *entity.User
	ProductNames map[string]string // productID -> nombre
}

// ReceiptGenerator genera el comprobante PDF de un pedido.
type ReceiptGenerator interface {
	OrderReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// Observer recibe los eventos del ciclo de vida de un pedido (métricas).
type Observer interface {
	OrderCreated()
	OrderRejected(reason string)
}

type nopObserver struct{}

func (nopObserver) OrderCreated()        {}
func (nopObserver) OrderRejected(string) {}
