package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/distribucion-api/internal/application/analytics"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// Get devuelve el tablero completo. Las secciones se calculan en paralelo.
// GET /api/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary conteos generales: productos, clientes, pedidos pendientes, rutas activas.
// GET /api/dashboard/resumen
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SalesMetrics ventas de hoy, semana y mes, con crecimiento mensual en %.
// GET /api/dashboard/metricas-ventas
func (h *DashboardHandler) SalesMetrics(c *fiber.Ctx) error {
	out, err := h.uc.SalesMetrics(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PopularProducts GET /api/dashboard/productos-populares?limit=5
func (h *DashboardHandler) PopularProducts(c *fiber.Ctx) error {
	out, err := h.uc.PopularProducts(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PendingOrders GET /api/dashboard/pedidos-pendientes?limit=5
func (h *DashboardHandler) PendingOrders(c *fiber.Ctx) error {
	out, err := h.uc.PendingOrders(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ActiveRoutes GET /api/dashboard/rutas-activas
func (h *DashboardHandler) ActiveRoutes(c *fiber.Ctx) error {
	out, err := h.uc.ActiveRoutes(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// MonthlySales serie mensual incluyendo el mes en curso.
// GET /api/dashboard/ventas-mensuales?meses=6
func (h *DashboardHandler) MonthlySales(c *fiber.Ctx) error {
	out, err := h.uc.MonthlySales(c.UserContext(), c.QueryInt("meses", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
