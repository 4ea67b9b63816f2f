package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

type orderRepo struct{ repoBase }

func (r *orderRepo) Create(ctx context.Context, o *entity.Order) error {
	unlock, err := r.begin(ctx, "orders.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().clients[o.ClientID]; !ok {
		return domain.ErrNotFound
	}
	stored := *o
	stored.Lines = nil
	r.d().orders[o.ID] = stored
	return nil
}

func (r *orderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	unlock, err := r.begin(ctx, "orders.CreateLine")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().orders[l.OrderID]; !ok {
		return domain.ErrNotFound
	}
	r.d().lines[l.OrderID] = append(r.d().lines[l.OrderID], *l)
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	unlock, err := r.begin(ctx, "orders.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.load(id), nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	unlock, err := r.begin(ctx, "orders.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.load(id), nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	unlock, err := r.begin(ctx, "orders.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Order, 0)
	for id, o := range r.d().orders {
		if f.ClientID != "" && o.ClientID != f.ClientID {
			continue
		}
		if f.SellerID != "" && o.SellerID != f.SellerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, r.load(id))
	}
	// Más recientes primero.
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	unlock, err := r.begin(ctx, "orders.UpdateStatus")
	if err != nil {
		return err
	}
	defer unlock()
	o, ok := r.d().orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	r.d().orders[id] = o
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	unlock, err := r.begin(ctx, "orders.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().orders[id]; !ok {
		return domain.ErrNotFound
	}
	for did, d := range r.d().deliveries {
		if d.OrderID != id {
			continue
		}
		for pid, p := range r.d().payments {
			if p.DeliveryID == did {
				delete(r.d().payments, pid)
			}
		}
		delete(r.d().deliveries, did)
	}
	delete(r.d().lines, id)
	delete(r.d().orders, id)
	return nil
}

func (r *orderRepo) load(id string) *entity.Order {
	o, ok := r.d().orders[id]
	if !ok {
		return nil
	}
	o.Lines = slices.Clone(r.d().lines[id])
	return &o
}
