package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeAnalytics struct {
	mu       sync.Mutex
	calls    int
	sales    map[time.Time]decimal.Decimal // desde -> total
	monthly  []repository.MonthlySalesResult
	failWith error
}

func (f *fakeAnalytics) hit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failWith
}

func (f *fakeAnalytics) Summary(context.Context) (*repository.SummaryResult, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return &repository.SummaryResult{ActiveClients: 3, TotalOrders: 7, TotalSales: decimal.RequireFromString("150.005")}, nil
}

func (f *fakeAnalytics) SalesBetween(_ context.Context, from, _ time.Time) (decimal.Decimal, error) {
	if err := f.hit(); err != nil {
		return decimal.Zero, err
	}
	return f.sales[from], nil
}

func (f *fakeAnalytics) PopularProducts(_ context.Context, limit int) ([]repository.PopularProductResult, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return []repository.PopularProductResult{{ProductID: "p1", Name: "Arroz", UnitsSold: limit, TotalSales: decimal.NewFromInt(10)}}, nil
}

func (f *fakeAnalytics) PendingOrders(context.Context, int) ([]repository.PendingOrderResult, error) {
	return nil, f.hit()
}

func (f *fakeAnalytics) ActiveRoutes(context.Context) ([]repository.ActiveRouteResult, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return []repository.ActiveRouteResult{{RouteID: "r1", Name: "Norte", TotalClients: 4, AssignedTo: "luis"}}, nil
}

func (f *fakeAnalytics) MonthlySales(context.Context, time.Time) ([]repository.MonthlySalesResult, error) {
	if err := f.hit(); err != nil {
		return nil, err
	}
	return f.monthly, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = raw
	return nil
}

// miércoles 20 de mayo de 2026
var fixedNow = time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)

func newDashboard(repo repository.AnalyticsRepository, cache Cache) *DashboardUseCase {
	uc := NewDashboardUseCase(repo, cache, time.Minute, nil)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesMetrics_RangosYCrecimiento(t *testing.T) {
	repo := &fakeAnalytics{sales: map[time.Time]decimal.Decimal{
		time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC): decimal.NewFromInt(50),  // hoy
		time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC): decimal.NewFromInt(120), // lunes
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC):  decimal.NewFromInt(300), // mes
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC):  decimal.NewFromInt(200), // mes anterior
	}}
	uc := newDashboard(repo, nil)

	m, err := uc.SalesMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50.00", m.Today.StringFixed(2))
	assert.Equal(t, "120.00", m.Week.StringFixed(2))
	assert.Equal(t, "300.00", m.Month.StringFixed(2))
	assert.Equal(t, "50.00", m.MonthlyGrowth.StringFixed(2))
}

func TestGrowth(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, "100", growth(d("10"), decimal.Zero).String())
	assert.Equal(t, "0", growth(decimal.Zero, decimal.Zero).String())
	assert.Equal(t, "-33.33", growth(d("20"), d("30")).String())
}

func TestDaysSinceMonday(t *testing.T) {
	assert.Equal(t, 0, daysSinceMonday(time.Monday))
	assert.Equal(t, 6, daysSinceMonday(time.Sunday))
	assert.Equal(t, 2, daysSinceMonday(time.Wednesday))
}

func TestMonthlySales_RellenaMesesSinVentas(t *testing.T) {
	repo := &fakeAnalytics{monthly: []repository.MonthlySalesResult{
		{Year: 2026, Month: 2, TotalSales: decimal.NewFromInt(10), OrderCount: 1},
		{Year: 2026, Month: 5, TotalSales: decimal.NewFromInt(40), OrderCount: 3},
	}}
	uc := newDashboard(repo, nil)

	series, err := uc.MonthlySales(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, series, 6)
	assert.Equal(t, "Diciembre 2025", series[0].Label)
	assert.Equal(t, "Febrero 2026", series[2].Label)
	assert.Equal(t, 1, series[2].OrderCount)
	assert.True(t, series[3].TotalSales.IsZero())
	assert.Equal(t, "Mayo 2026", series[5].Label)
	assert.Equal(t, 3, series[5].OrderCount)
}

func TestDashboard_UsaCache(t *testing.T) {
	repo := &fakeAnalytics{sales: map[time.Time]decimal.Decimal{}}
	cache := &mapCache{}
	uc := newDashboard(repo, cache)
	ctx := context.Background()

	first, err := uc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "150.01", first.Summary.TotalSales.StringFixed(2))
	assert.Equal(t, 5, first.PopularProducts[0].UnitsSold, "límite por defecto")
	callsAfterFirst := repo.calls

	second, err := uc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, repo.calls, "la segunda lectura sale de caché")
	assert.Equal(t, first.Summary.TotalOrders, second.Summary.TotalOrders)
	assert.Equal(t, "luis", second.ActiveRoutes[0].AssignedTo)
}

func TestDashboard_CacheCaidaNoRompe(t *testing.T) {
	repo := &fakeAnalytics{sales: map[time.Time]decimal.Decimal{}}
	uc := newDashboard(repo, &mapCache{err: errors.New("redis caído")})

	out, err := uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Summary.ActiveClients)
}

func TestDashboard_ErrorDelRepo(t *testing.T) {
	boom := errors.New("db caída")
	uc := newDashboard(&fakeAnalytics{failWith: boom}, nil)

	_, err := uc.Dashboard(context.Background())
	assert.ErrorIs(t, err, boom)
}
