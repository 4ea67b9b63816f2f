package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

type deliveryRepo struct{ repoBase }

func (r *deliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	unlock, err := r.begin(ctx, "deliveries.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().orders[d.OrderID]; !ok {
		return domain.ErrNotFound
	}
	r.d().deliveries[d.ID] = copyDelivery(*d)
	return nil
}

func (r *deliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	unlock, err := r.begin(ctx, "deliveries.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.get(id), nil
}

func (r *deliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	unlock, err := r.begin(ctx, "deliveries.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.get(id), nil
}

func (r *deliveryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error) {
	unlock, err := r.begin(ctx, "deliveries.ListByOrder")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Delivery, 0)
	for _, d := range r.d().deliveries {
		if d.OrderID == orderID {
			d = copyDelivery(d)
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *deliveryRepo) UpdateOutcome(ctx context.Context, d *entity.Delivery) error {
	unlock, err := r.begin(ctx, "deliveries.UpdateOutcome")
	if err != nil {
		return err
	}
	defer unlock()
	cur, ok := r.d().deliveries[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = d.Status
	cur.Observation = d.Observation
	cur.DeliveredAt = d.DeliveredAt
	r.d().deliveries[d.ID] = copyDelivery(cur)
	return nil
}

func (r *deliveryRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	unlock, err := r.begin(ctx, "deliveries.CreatePayment")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().deliveries[p.DeliveryID]; !ok {
		return domain.ErrNotFound
	}
	r.d().payments[p.ID] = *p
	return nil
}

func (r *deliveryRepo) ListPayments(ctx context.Context, deliveryID string) ([]*entity.Payment, error) {
	unlock, err := r.begin(ctx, "deliveries.ListPayments")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Payment, 0)
	for _, p := range r.d().payments {
		if p.DeliveryID == deliveryID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (r *deliveryRepo) get(id string) *entity.Delivery {
	d, ok := r.d().deliveries[id]
	if !ok {
		return nil
	}
	d = copyDelivery(d)
	return &d
}

func copyDelivery(d entity.Delivery) entity.Delivery {
	if d.DeliveredAt != nil {
		at := *d.DeliveredAt
		d.DeliveredAt = &at
	}
	return d
}
