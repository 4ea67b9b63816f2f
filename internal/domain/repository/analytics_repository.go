package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SummaryResult conteos generales del sistema.
type SummaryResult struct {
	ActiveClients  int
	ActiveProducts int
	TotalOrders    int
	TotalSales     decimal.Decimal
	PendingOrders  int
	ActiveRoutes   int
}

// PopularProductResult producto con sus unidades y ventas acumuladas.
type PopularProductResult struct {
	ProductID  string
	Name       string
	SKU        string
	UnitsSold  int
	TotalSales decimal.Decimal
}

// PendingOrderResult pedido pendiente de entrega con el nombre del cliente.
type PendingOrderResult struct {
	OrderID    string
	ClientName string
	Total      decimal.Decimal
	OrderDate  time.Time
	Status     string
}

// ActiveRouteResult ruta activa con su número de paradas y el último usuario asignado.
type ActiveRouteResult struct {
	RouteID      string
	Name         string
	Type         string
	TotalClients int
	AssignedTo   string // vacío si no tiene asignaciones
}

// MonthlySalesResult ventas agregadas por mes calendario.
type MonthlySalesResult struct {
	Year       int
	Month      int
	TotalSales decimal.Decimal
	OrderCount int
}

// AnalyticsRepository consultas de lectura para el dashboard. No modifica datos.
type AnalyticsRepository interface {
	Summary(ctx context.Context) (*SummaryResult, error)
	// SalesBetween suma los totales de pedidos con fecha en [from, to).
	SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	PopularProducts(ctx context.Context, limit int) ([]PopularProductResult, error)
	PendingOrders(ctx context.Context, limit int) ([]PendingOrderResult, error)
	ActiveRoutes(ctx context.Context) ([]ActiveRouteResult, error)
	MonthlySales(ctx context.Context, since time.Time) ([]MonthlySalesResult, error)
}
