package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const deliveryColumns = `id, order_id, deliverer_id, delivered_at, status, observation, created_at`

// DeliveryRepo entregas y sus cobros.
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el repo.
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO deliveries (id, order_id, deliverer_id, delivered_at, status, observation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.OrderID, d.DelivererID, d.DeliveredAt, d.Status, d.Observation, d.CreatedAt,
	)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
}

func (r *DeliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1 FOR UPDATE`, id)
}

func (r *DeliveryRepo) getOne(ctx context.Context, query, id string) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, query, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (r *DeliveryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+deliveryColumns+`
		FROM deliveries
		WHERE order_id = $1
		ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Delivery, error) {
		return scanDelivery(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	return out, nil
}

func (r *DeliveryRepo) UpdateOutcome(ctx context.Context, d *entity.Delivery) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE deliveries SET status = $2, delivered_at = $3, observation = $4
		WHERE id = $1`, d.ID, d.Status, d.DeliveredAt, d.Observation)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DeliveryRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, delivery_id, amount, method, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, p.ID, p.DeliveryID, p.Amount, p.Method, p.Status, p.PaidAt)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) ListPayments(ctx context.Context, deliveryID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, delivery_id, amount, method, status, paid_at
		FROM payments
		WHERE delivery_id = $1
		ORDER BY paid_at, id`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Payment, error) {
		var p entity.Payment
		err := row.Scan(&p.ID, &p.DeliveryID, &p.Amount, &p.Method, &p.Status, &p.PaidAt)
		return &p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return out, nil
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.DelivererID, &d.DeliveredAt, &d.Status, &d.Observation, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
