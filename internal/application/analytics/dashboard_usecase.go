// Package analytics contiene los casos de uso de reportes de solo lectura (dashboard).
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

const (
	defaultListLimit    = 5  // productos populares y pedidos pendientes
	maxListLimit        = 50
	defaultSeriesMonths = 6
	maxSeriesMonths     = 24

	dashboardCacheKey = "dashboard:full"
)

// Cache almacenamiento de respuestas del dashboard (cache-aside).
// Get devuelve false si la clave no existe.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// DashboardUseCase arma las métricas del dashboard a partir de AnalyticsRepository.
type DashboardUseCase struct {
	repo  repository.AnalyticsRepository
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewDashboardUseCase(repo repository.AnalyticsRepository, cache Cache, ttl time.Duration, log *logger.Logger) *DashboardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{repo: repo, cache: cache, ttl: ttl, log: log, now: time.Now}
}

// Dashboard respuesta completa. Las seis consultas corren en paralelo; la primera
// que falle cancela las demás.
func (uc *DashboardUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	var cached dto.DashboardDTO
	if uc.cacheGet(ctx, dashboardCacheKey, &cached) {
		return &cached, nil
	}

	out := &dto.DashboardDTO{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := uc.Summary(gctx)
		if err != nil {
			return err
		}
		out.Summary = *s
		return nil
	})
	g.Go(func() error {
		m, err := uc.SalesMetrics(gctx)
		if err != nil {
			return err
		}
		out.SalesMetrics = *m
		return nil
	})
	g.Go(func() error {
		p, err := uc.PopularProducts(gctx, 0)
		out.PopularProducts = p
		return err
	})
	g.Go(func() error {
		p, err := uc.PendingOrders(gctx, 0)
		out.PendingOrders = p
		return err
	})
	g.Go(func() error {
		r, err := uc.ActiveRoutes(gctx)
		out.ActiveRoutes = r
		return err
	})
	g.Go(func() error {
		m, err := uc.MonthlySales(gctx, 0)
		out.MonthlySales = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, dashboardCacheKey, out)
	return out, nil
}

// Summary conteos generales.
func (uc *DashboardUseCase) Summary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	s, err := uc.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: resumen: %w", err)
	}
	return &dto.DashboardSummaryDTO{
		ActiveClients:  s.ActiveClients,
		ActiveProducts: s.ActiveProducts,
		TotalOrders:    s.TotalOrders,
		TotalSales:     s.TotalSales.Round(2),
		PendingOrders:  s.PendingOrders,
		ActiveRoutes:   s.ActiveRoutes,
	}, nil
}

// SalesMetrics ventas de hoy, de la semana (desde el lunes), del mes y crecimiento
// porcentual contra el mes anterior.
func (uc *DashboardUseCase) SalesMetrics(ctx context.Context) (*dto.SalesMetricsDTO, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	weekStart := todayStart.AddDate(0, 0, -daysSinceMonday(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var today, week, month, prev decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	ranges := []struct {
		dst      *decimal.Decimal
		from, to time.Time
	}{
		{&today, todayStart, tomorrow},
		{&week, weekStart, tomorrow},
		{&month, monthStart, tomorrow},
		{&prev, prevMonthStart, monthStart},
	}
	for _, r := range ranges {
		g.Go(func() error {
			v, err := uc.repo.SalesBetween(gctx, r.from, r.to)
			if err != nil {
				return fmt.Errorf("dashboard: ventas %s: %w", r.from.Format("2006-01-02"), err)
			}
			*r.dst = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.SalesMetricsDTO{
		Today:         today.Round(2),
		Week:          week.Round(2),
		Month:         month.Round(2),
		MonthlyGrowth: growth(month, prev),
	}, nil
}

// PopularProducts productos más vendidos por unidades. limit <= 0 usa el valor por defecto.
func (uc *DashboardUseCase) PopularProducts(ctx context.Context, limit int) ([]dto.PopularProductDTO, error) {
	rows, err := uc.repo.PopularProducts(ctx, clamp(limit, defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("dashboard: productos populares: %w", err)
	}
	out := make([]dto.PopularProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PopularProductDTO{
			ProductID:  r.ProductID,
			Name:       r.Name,
			SKU:        r.SKU,
			UnitsSold:  r.UnitsSold,
			TotalSales: r.TotalSales.Round(2),
		})
	}
	return out, nil
}

// PendingOrders pedidos pendientes de entrega, los más antiguos primero.
func (uc *DashboardUseCase) PendingOrders(ctx context.Context, limit int) ([]dto.PendingOrderDTO, error) {
	rows, err := uc.repo.PendingOrders(ctx, clamp(limit, defaultListLimit, maxListLimit))
	if err != nil {
		return nil, fmt.Errorf("dashboard: pedidos pendientes: %w", err)
	}
	out := make([]dto.PendingOrderDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PendingOrderDTO{
			OrderID:    r.OrderID,
			ClientName: r.ClientName,
			Total:      r.Total.Round(2),
			OrderDate:  r.OrderDate,
			Status:     r.Status,
		})
	}
	return out, nil
}

// ActiveRoutes rutas activas con número de paradas y último asignado.
func (uc *DashboardUseCase) ActiveRoutes(ctx context.Context) ([]dto.ActiveRouteDTO, error) {
	rows, err := uc.repo.ActiveRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: rutas activas: %w", err)
	}
	out := make([]dto.ActiveRouteDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ActiveRouteDTO{
			RouteID:      r.RouteID,
			Name:         r.Name,
			Type:         r.Type,
			TotalClients: r.TotalClients,
			AssignedTo:   r.AssignedTo,
		})
	}
	return out, nil
}

// MonthlySales serie de los últimos meses incluyendo el actual; los meses sin
// ventas aparecen en cero.
func (uc *DashboardUseCase) MonthlySales(ctx context.Context, months int) ([]dto.MonthlySalesDTO, error) {
	months = clamp(months, defaultSeriesMonths, maxSeriesMonths)
	now := uc.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	rows, err := uc.repo.MonthlySales(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("dashboard: ventas mensuales: %w", err)
	}
	type key struct{ y, m int }
	byMonth := make(map[key]repository.MonthlySalesResult, len(rows))
	for _, r := range rows {
		byMonth[key{r.Year, r.Month}] = r
	}
	out := make([]dto.MonthlySalesDTO, 0, months)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		r := byMonth[key{m.Year(), int(m.Month())}]
		out = append(out, dto.MonthlySalesDTO{
			Label:      monthLabel(m),
			TotalSales: r.TotalSales.Round(2),
			OrderCount: r.OrderCount,
		})
	}
	return out, nil
}

func (uc *DashboardUseCase) cacheGet(ctx context.Context, key string, dest any) bool {
	if uc.cache == nil {
		return false
	}
	ok, err := uc.cache.Get(ctx, key, dest)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("dashboard: lectura de caché")
		return false
	}
	return ok
}

func (uc *DashboardUseCase) cacheSet(ctx context.Context, key string, value any) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, value, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("dashboard: escritura de caché")
	}
}

// growth (mes - anterior) / anterior * 100. Sin ventas el mes anterior: 100 si hubo
// ventas este mes, 0 si no.
func growth(month, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if month.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return month.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
}

func clamp(v, def, hi int) int {
	if v <= 0 {
		return def
	}
	if v > hi {
		return hi
	}
	return v
}

func daysSinceMonday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
