package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.RouteRepository = (*RouteRepo)(nil)

const (
	routeColumns      = `id, name, description, type, created_by, active, created_at, updated_at`
	assignmentColumns = `id, route_id, user_id, date, status, created_at`
)

// RouteRepo rutas, paradas (route_clients) y asignaciones.
type RouteRepo struct {
	q Querier
}

// NewRouteRepository construye el repo.
func NewRouteRepository(q Querier) *RouteRepo {
	return &RouteRepo{q: q}
}

func (r *RouteRepo) Create(ctx context.Context, rt *entity.Route) error {
	query := `
		INSERT INTO routes (id, name, description, type, created_by, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rt.ID, rt.Name, rt.Description, rt.Type, rt.CreatedBy, rt.Active, rt.CreatedAt, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert route: %w", err)
	}
	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id string) (*entity.Route, error) {
	if !validID(id) {
		return nil, nil
	}
	rt, err := scanRoute(r.q.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return rt, nil
}

func (r *RouteRepo) List(ctx context.Context, routeType string, onlyActive bool) ([]*entity.Route, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+routeColumns+`
		FROM routes
		WHERE ($1::text = '' OR type = $1) AND (NOT $2 OR active)
		ORDER BY name, id`, routeType, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Route, error) {
		return scanRoute(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan route: %w", err)
	}
	return out, nil
}

func (r *RouteRepo) Update(ctx context.Context, rt *entity.Route) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE routes
		SET name = $2, description = $3, type = $4, active = $5, updated_at = $6
		WHERE id = $1`,
		rt.ID, rt.Name, rt.Description, rt.Type, rt.Active, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RouteRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE routes SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete route: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RouteRepo) AddClient(ctx context.Context, rc *entity.RouteClient) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO route_clients (id, route_id, client_id, order_index)
		VALUES ($1, $2, $3, $4)`, rc.ID, rc.RouteID, rc.ClientID, rc.OrderIndex)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%w: el cliente ya está en la ruta", domain.ErrDuplicate)
		case isFKViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert route client: %w", err)
	}
	return nil
}

func (r *RouteRepo) RemoveClient(ctx context.Context, routeID, clientID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM route_clients WHERE route_id = $1 AND client_id = $2`, routeID, clientID)
	if err != nil {
		return fmt.Errorf("delete route client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListClients paradas con el cliente cargado; empates de order_index conservan el orden de inserción.
func (r *RouteRepo) ListClients(ctx context.Context, routeID string) ([]*entity.RouteClient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rc.id, rc.route_id, rc.client_id, rc.order_index,
		       c.id, c.name, c.nit, c.address, c.phone, c.contact, c.latitude, c.longitude, c.active, c.created_at, c.updated_at
		FROM route_clients rc
		JOIN clients c ON c.id = rc.client_id
		WHERE rc.route_id = $1
		ORDER BY rc.order_index, rc.position`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list route clients: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.RouteClient, error) {
		var rc entity.RouteClient
		var c entity.Client
		err := row.Scan(
			&rc.ID, &rc.RouteID, &rc.ClientID, &rc.OrderIndex,
			&c.ID, &c.Name, &c.NIT, &c.Address, &c.Phone, &c.Contact,
			&c.Latitude, &c.Longitude, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		)
		rc.Client = &c
		return &rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan route client: %w", err)
	}
	return out, nil
}

func (r *RouteRepo) CreateAssignment(ctx context.Context, a *entity.RouteAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO route_assignments (id, route_id, user_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, a.ID, a.RouteID, a.UserID, a.Date, a.Status, a.CreatedAt)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert route assignment: %w", err)
	}
	return nil
}

func (r *RouteRepo) GetAssignment(ctx context.Context, id string) (*entity.RouteAssignment, error) {
	if !validID(id) {
		return nil, nil
	}
	a, err := scanAssignment(r.q.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM route_assignments WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route assignment: %w", err)
	}
	return a, nil
}

func (r *RouteRepo) ListAssignments(ctx context.Context, routeID string) ([]*entity.RouteAssignment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM route_assignments
		WHERE route_id = $1
		ORDER BY date DESC, created_at DESC`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list route assignments: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.RouteAssignment, error) {
		return scanAssignment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan route assignment: %w", err)
	}
	return out, nil
}

func (r *RouteRepo) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE route_assignments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update route assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RouteRepo) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM route_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete route assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRoute(row pgx.Row) (*entity.Route, error) {
	var rt entity.Route
	err := row.Scan(&rt.ID, &rt.Name, &rt.Description, &rt.Type, &rt.CreatedBy, &rt.Active, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func scanAssignment(row pgx.Row) (*entity.RouteAssignment, error) {
	var a entity.RouteAssignment
	if err := row.Scan(&a.ID, &a.RouteID, &a.UserID, &a.Date, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
