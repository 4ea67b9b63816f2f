package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO conteos generales (GET /api/dashboard/resumen).
type DashboardSummaryDTO struct {
	ActiveClients  int             `json:"active_clients"`
	ActiveProducts int             `json:"active_products"`
	TotalOrders    int             `json:"total_orders"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	PendingOrders  int             `json:"pending_orders"`
	ActiveRoutes   int             `json:"active_routes"`
}

// SalesMetricsDTO ventas por periodo y crecimiento contra el mes anterior (%).
type SalesMetricsDTO struct {
	Today         decimal.Decimal `json:"today"`
	Week          decimal.Decimal `json:"week"`
	Month         decimal.Decimal `json:"month"`
	MonthlyGrowth decimal.Decimal `json:"monthly_growth"`
}

// PopularProductDTO producto más vendido.
type PopularProductDTO struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	UnitsSold  int             `json:"units_sold"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// PendingOrderDTO pedido pendiente más antiguo.
type PendingOrderDTO struct {
	OrderID    string          `json:"order_id"`
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
	OrderDate  time.Time       `json:"order_date"`
	Status     string          `json:"status"`
}

// ActiveRouteDTO ruta activa con el último asignado.
type ActiveRouteDTO struct {
	RouteID      string `json:"route_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	TotalClients int    `json:"total_clients"`
	AssignedTo   string `json:"assigned_to,omitempty"`
}

// MonthlySalesDTO punto de la serie mensual.
type MonthlySalesDTO struct {
	Label      string          `json:"label"` // ej: "Febrero 2026"
	TotalSales decimal.Decimal `json:"total_sales"`
	OrderCount int             `json:"order_count"`
}

// DashboardDTO respuesta completa de GET /api/dashboard.
type DashboardDTO struct {
	Summary         DashboardSummaryDTO `json:"summary"`
	SalesMetrics    SalesMetricsDTO     `json:"sales_metrics"`
	PopularProducts []PopularProductDTO `json:"popular_products"`
	PendingOrders   []PendingOrderDTO   `json:"pending_orders"`
	ActiveRoutes    []ActiveRouteDTO    `json:"active_routes"`
	MonthlySales    []MonthlySalesDTO   `json:"monthly_sales"`
}
