package usecase

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// RoleTxRunner ejecuta fn en una transacción con repos de roles y permisos.
type RoleTxRunner interface {
	RunRole(ctx context.Context, fn func(
		roleRepo repository.RoleRepository,
		permRepo repository.PermissionRepository,
	) error) error
}

// ProductTxRunner ejecuta fn en una transacción con el repo de productos.
type ProductTxRunner interface {
	RunProduct(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error
}

// DeliveryTxRunner ejecuta fn en una transacción con repos de pedidos y entregas.
type DeliveryTxRunner interface {
	RunDelivery(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		deliveryRepo repository.DeliveryRepository,
	) error) error
}
