package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// RouteRepository persistencia de rutas, sus paradas y asignaciones.
type RouteRepository interface {
	Create(ctx context.Context, route *entity.Route) error
	GetByID(ctx context.Context, id string) (*entity.Route, error)
	// List filtra por tipo si routeType no está vacío.
	List(ctx context.Context, routeType string, onlyActive bool) ([]*entity.Route, error)
	Update(ctx context.Context, route *entity.Route) error
	SoftDelete(ctx context.Context, id string) error

	AddClient(ctx context.Context, rc *entity.RouteClient) error
	// RemoveClient devuelve domain.ErrNotFound si el cliente no estaba en la ruta.
	RemoveClient(ctx context.Context, routeID, clientID string) error
	// ListClients devuelve las paradas con el cliente cargado, ordenadas por OrderIndex ascendente.
	ListClients(ctx context.Context, routeID string) ([]*entity.RouteClient, error)

	CreateAssignment(ctx context.Context, a *entity.RouteAssignment) error
	GetAssignment(ctx context.Context, id string) (*entity.RouteAssignment, error)
	ListAssignments(ctx context.Context, routeID string) ([]*entity.RouteAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, id, status string) error
	DeleteAssignment(ctx context.Context, id string) error
}
