package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

type analyticsRepo struct{ repoBase }

func (r *analyticsRepo) Summary(ctx context.Context) (*repository.SummaryResult, error) {
	unlock, err := r.begin(ctx, "analytics.Summary")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := &repository.SummaryResult{TotalSales: decimal.Zero}
	for _, c := range r.d().clients {
		if c.Active {
			out.ActiveClients++
		}
	}
	for _, p := range r.d().products {
		if p.Active {
			out.ActiveProducts++
		}
	}
	for _, o := range r.d().orders {
		out.TotalOrders++
		out.TotalSales = out.TotalSales.Add(o.Total)
		if o.Status == entity.OrderPendingDelivery {
			out.PendingOrders++
		}
	}
	for _, rt := range r.d().routes {
		if rt.Active {
			out.ActiveRoutes++
		}
	}
	return out, nil
}

func (r *analyticsRepo) SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	unlock, err := r.begin(ctx, "analytics.SalesBetween")
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()
	total := decimal.Zero
	for _, o := range r.d().orders {
		if !o.OrderDate.Before(from) && o.OrderDate.Before(to) {
			total = total.Add(o.Total)
		}
	}
	return total, nil
}

func (r *analyticsRepo) PopularProducts(ctx context.Context, limit int) ([]repository.PopularProductResult, error) {
	unlock, err := r.begin(ctx, "analytics.PopularProducts")
	if err != nil {
		return nil, err
	}
	defer unlock()
	agg := map[string]*repository.PopularProductResult{}
	for _, lines := range r.d().lines {
		for _, l := range lines {
			row, ok := agg[l.ProductID]
			if !ok {
				p := r.d().products[l.ProductID]
				row = &repository.PopularProductResult{ProductID: l.ProductID, Name: p.Name, SKU: p.SKU, TotalSales: decimal.Zero}
				agg[l.ProductID] = row
			}
			row.UnitsSold += l.Quantity
			row.TotalSales = row.TotalSales.Add(l.Subtotal)
		}
	}
	out := make([]repository.PopularProductResult, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold == out[j].UnitsSold {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].UnitsSold > out[j].UnitsSold
	})
	return page(out, limit, 0), nil
}

func (r *analyticsRepo) PendingOrders(ctx context.Context, limit int) ([]repository.PendingOrderResult, error) {
	unlock, err := r.begin(ctx, "analytics.PendingOrders")
	if err != nil {
		return nil, err
	}
	defer unlock()
	pending := make([]entity.Order, 0)
	for _, o := range r.d().orders {
		if o.Status == entity.OrderPendingDelivery {
			pending = append(pending, o)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	pending = page(pending, limit, 0)
	out := make([]repository.PendingOrderResult, 0, len(pending))
	for _, o := range pending {
		out = append(out, repository.PendingOrderResult{
			OrderID:    o.ID,
			ClientName: r.d().clients[o.ClientID].Name,
			Total:      o.Total,
			OrderDate:  o.OrderDate,
			Status:     o.Status,
		})
	}
	return out, nil
}

func (r *analyticsRepo) ActiveRoutes(ctx context.Context) ([]repository.ActiveRouteResult, error) {
	unlock, err := r.begin(ctx, "analytics.ActiveRoutes")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]repository.ActiveRouteResult, 0)
	for _, rt := range r.d().routes {
		if !rt.Active {
			continue
		}
		row := repository.ActiveRouteResult{
			RouteID:      rt.ID,
			Name:         rt.Name,
			Type:         rt.Type,
			TotalClients: len(r.d().stops[rt.ID]),
		}
		var latest *entity.RouteAssignment
		for _, a := range r.d().assignments {
			if a.RouteID != rt.ID {
				continue
			}
			if latest == nil || a.Date.After(latest.Date) || (a.Date.Equal(latest.Date) && a.CreatedAt.After(latest.CreatedAt)) {
				latest = &a
			}
		}
		if latest != nil {
			row.AssignedTo = r.d().users[latest.UserID].Username
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *analyticsRepo) MonthlySales(ctx context.Context, since time.Time) ([]repository.MonthlySalesResult, error) {
	unlock, err := r.begin(ctx, "analytics.MonthlySales")
	if err != nil {
		return nil, err
	}
	defer unlock()
	type key struct{ y, m int }
	agg := map[key]*repository.MonthlySalesResult{}
	for _, o := range r.d().orders {
		if o.OrderDate.Before(since) {
			continue
		}
		k := key{o.OrderDate.Year(), int(o.OrderDate.Month())}
		row, ok := agg[k]
		if !ok {
			row = &repository.MonthlySalesResult{Year: k.y, Month: k.m, TotalSales: decimal.Zero}
			agg[k] = row
		}
		row.TotalSales = row.TotalSales.Add(o.Total)
		row.OrderCount++
	}
	out := make([]repository.MonthlySalesResult, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year == out[j].Year {
			return out[i].Month < out[j].Month
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}
