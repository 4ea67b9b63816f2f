package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/application/route"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var (
	_ order.TxRunner           = (*TxRunner)(nil)
	_ route.TxRunner           = (*TxRunner)(nil)
	_ usecase.RoleTxRunner     = (*TxRunner)(nil)
	_ usecase.DeliveryTxRunner = (*TxRunner)(nil)
	_ usecase.ProductTxRunner  = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia la transacción, ejecuta fn y hace Commit; cualquier error hace Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder repos de productos y pedidos atados a la misma transacción.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewOrderRepository(tx))
	})
}

// RunProduct repo de productos atado a la transacción.
func (r *TxRunner) RunProduct(ctx context.Context, fn func(productRepo repository.ProductRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx))
	})
}

// RunRoute repo de rutas atado a la transacción.
func (r *TxRunner) RunRoute(ctx context.Context, fn func(routeRepo repository.RouteRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewRouteRepository(tx))
	})
}

// RunRole repos de roles y permisos atados a la transacción.
func (r *TxRunner) RunRole(ctx context.Context, fn func(
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewRoleRepository(tx), NewPermissionRepository(tx))
	})
}

// RunDelivery repos de pedidos y entregas atados a la transacción.
func (r *TxRunner) RunDelivery(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	deliveryRepo repository.DeliveryRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewOrderRepository(tx), NewDeliveryRepository(tx))
	})
}
