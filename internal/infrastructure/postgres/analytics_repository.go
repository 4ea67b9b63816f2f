package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// Summary conteos generales en una sola consulta.
func (r *AnalyticsRepo) Summary(ctx context.Context) (*repository.SummaryResult, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM clients  WHERE active)                          AS active_clients,
	    (SELECT COUNT(*) FROM products WHERE active)                          AS active_products,
	    (SELECT COUNT(*) FROM orders)                                         AS total_orders,
	    (SELECT COALESCE(SUM(total), 0) FROM orders)                          AS total_sales,
	    (SELECT COUNT(*) FROM orders WHERE status = 'pending_delivery')       AS pending_orders,
	    (SELECT COUNT(*) FROM routes WHERE active)                            AS active_routes`

	var out repository.SummaryResult
	err := r.pool.QueryRow(ctx, query).Scan(
		&out.ActiveClients,
		&out.ActiveProducts,
		&out.TotalOrders,
		&out.TotalSales,
		&out.PendingOrders,
		&out.ActiveRoutes,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics.Summary: %w", err)
	}
	return &out, nil
}

// SalesBetween suma de totales con order_date en [from, to).
func (r *AnalyticsRepo) SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(total), 0)
	FROM orders
	WHERE order_date >= $1 AND order_date < $2`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.SalesBetween: %w", err)
	}
	return total, nil
}

// PopularProducts productos por unidades vendidas, mayor primero.
func (r *AnalyticsRepo) PopularProducts(ctx context.Context, limit int) ([]repository.PopularProductResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    p.sku,
	    SUM(l.quantity)  AS units_sold,
	    SUM(l.subtotal)  AS total_sales
	FROM order_lines l
	JOIN products    p ON p.id = l.product_id
	GROUP BY p.id, p.name, p.sku
	ORDER BY units_sold DESC, p.id
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics.PopularProducts: %w", err)
	}
	defer rows.Close()

	results := make([]repository.PopularProductResult, 0)
	for rows.Next() {
		var row repository.PopularProductResult
		if err := rows.Scan(&row.ProductID, &row.Name, &row.SKU, &row.UnitsSold, &row.TotalSales); err != nil {
			return nil, fmt.Errorf("analytics.PopularProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// PendingOrders pedidos pendientes de entrega, los más antiguos primero.
func (r *AnalyticsRepo) PendingOrders(ctx context.Context, limit int) ([]repository.PendingOrderResult, error) {
	const query = `
	SELECT o.id, c.name, o.total, o.order_date, o.status
	FROM orders  o
	JOIN clients c ON c.id = o.client_id
	WHERE o.status = 'pending_delivery'
	ORDER BY o.created_at, o.id
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("analytics.PendingOrders: %w", err)
	}
	defer rows.Close()

	results := make([]repository.PendingOrderResult, 0)
	for rows.Next() {
		var row repository.PendingOrderResult
		if err := rows.Scan(&row.OrderID, &row.ClientName, &row.Total, &row.OrderDate, &row.Status); err != nil {
			return nil, fmt.Errorf("analytics.PendingOrders scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// ActiveRoutes rutas activas con número de paradas y el usuario de la asignación más reciente.
func (r *AnalyticsRepo) ActiveRoutes(ctx context.Context) ([]repository.ActiveRouteResult, error) {
	const query = `
	SELECT
	    rt.id,
	    rt.name,
	    rt.type,
	    (SELECT COUNT(*) FROM route_clients rc WHERE rc.route_id = rt.id) AS total_clients,
	    COALESCE((
	        SELECT u.username
	        FROM route_assignments a
	        JOIN users u ON u.id = a.user_id
	        WHERE a.route_id = rt.id
	        ORDER BY a.date DESC, a.created_at DESC
	        LIMIT 1
	    ), '') AS assigned_to
	FROM routes rt
	WHERE rt.active
	ORDER BY rt.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.ActiveRoutes: %w", err)
	}
	defer rows.Close()

	results := make([]repository.ActiveRouteResult, 0)
	for rows.Next() {
		var row repository.ActiveRouteResult
		if err := rows.Scan(&row.RouteID, &row.Name, &row.Type, &row.TotalClients, &row.AssignedTo); err != nil {
			return nil, fmt.Errorf("analytics.ActiveRoutes scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// MonthlySales ventas agrupadas por mes calendario desde since. Los meses sin pedidos no aparecen.
func (r *AnalyticsRepo) MonthlySales(ctx context.Context, since time.Time) ([]repository.MonthlySalesResult, error) {
	const query = `
	SELECT
	    EXTRACT(YEAR  FROM order_date)::int AS year,
	    EXTRACT(MONTH FROM order_date)::int AS month,
	    SUM(total)                          AS total_sales,
	    COUNT(*)                            AS order_count
	FROM orders
	WHERE order_date >= $1
	GROUP BY year, month
	ORDER BY year, month`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("analytics.MonthlySales: %w", err)
	}
	defer rows.Close()

	results := make([]repository.MonthlySalesResult, 0)
	for rows.Next() {
		var row repository.MonthlySalesResult
		if err := rows.Scan(&row.Year, &row.Month, &row.TotalSales, &row.OrderCount); err != nil {
			return nil, fmt.Errorf("analytics.MonthlySales scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
