// Package route gestiona rutas de visita, sus clientes ordenados y las asignaciones a usuarios.
package route

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// TxRunner ejecuta fn dentro de una transacción con el repo de rutas.
type TxRunner interface {
	RunRoute(ctx context.Context, fn func(routeRepo repository.RouteRepository) error) error
}

// RouteUseCase casos de uso de rutas y asignaciones.
type RouteUseCase struct {
	txRunner   TxRunner
	routeRepo  repository.RouteRepository
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

// NewRouteUseCase construye el caso de uso.
func NewRouteUseCase(txRunner TxRunner, routeRepo repository.RouteRepository, clientRepo repository.ClientRepository, userRepo repository.UserRepository) *RouteUseCase {
	return &RouteUseCase{txRunner: txRunner, routeRepo: routeRepo, clientRepo: clientRepo, userRepo: userRepo, now: time.Now}
}

// Create crea la ruta y sus paradas en una sola transacción.
func (uc *RouteUseCase) Create(ctx context.Context, creatorID string, in dto.CreateRouteRequest) (*dto.RouteResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if !entity.ValidRouteType(in.Type) {
		return nil, domain.Invalid("type", "debe ser sales o delivery")
	}
	seen := make(map[string]bool, len(in.Clients))
	for i, stop := range in.Clients {
		if seen[stop.ClientID] {
			return nil, domain.Invalid(fmt.Sprintf("clients[%d].client_id", i), "cliente repetido en la ruta")
		}
		seen[stop.ClientID] = true
		if err := uc.requireClient(ctx, stop.ClientID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	r := &entity.Route{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Type:        in.Type,
		CreatedBy:   creatorID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.RunRoute(ctx, func(routeRepo repository.RouteRepository) error {
		if err := routeRepo.Create(ctx, r); err != nil {
			return err
		}
		for _, stop := range in.Clients {
			rc := &entity.RouteClient{
				ID:         uuid.New().String(),
				RouteID:    r.ID,
				ClientID:   stop.ClientID,
				OrderIndex: stop.OrderIndex,
			}
			if err := routeRepo.AddClient(ctx, rc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, r.ID)
}

// Get devuelve la ruta con paradas (por OrderIndex) y asignaciones.
func (uc *RouteUseCase) Get(ctx context.Context, id string) (*dto.RouteResponse, error) {
	r, err := uc.requireRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	stops, err := uc.routeRepo.ListClients(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := uc.routeRepo.ListAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toRouteResponse(r)
	for _, s := range stops {
		out.Clients = append(out.Clients, toStopResponse(s))
	}
	for _, a := range assignments {
		out.Assignments = append(out.Assignments, toAssignmentResponse(a))
	}
	return out, nil
}

// List lista rutas (activas e inactivas), filtrando por tipo si se indica.
func (uc *RouteUseCase) List(ctx context.Context, routeType string) ([]dto.RouteResponse, error) {
	return uc.list(ctx, routeType, false)
}

// ListActive lista solo las rutas activas.
func (uc *RouteUseCase) ListActive(ctx context.Context) ([]dto.RouteResponse, error) {
	return uc.list(ctx, "", true)
}

func (uc *RouteUseCase) list(ctx context.Context, routeType string, onlyActive bool) ([]dto.RouteResponse, error) {
	if routeType != "" && !entity.ValidRouteType(routeType) {
		return nil, domain.Invalid("type", "debe ser sales o delivery")
	}
	routes, err := uc.routeRepo.List(ctx, routeType, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, *toRouteResponse(r))
	}
	return out, nil
}

// Update modifica nombre, descripción, tipo o estado de la ruta.
func (uc *RouteUseCase) Update(ctx context.Context, id string, in dto.UpdateRouteRequest) (*dto.RouteResponse, error) {
	r, err := uc.requireRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Invalid("name", "no puede estar vacío")
		}
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Type != nil {
		if !entity.ValidRouteType(*in.Type) {
			return nil, domain.Invalid("type", "debe ser sales o delivery")
		}
		r.Type = *in.Type
	}
	if in.Active != nil {
		r.Active = *in.Active
	}
	r.UpdatedAt = uc.now()
	if err := uc.routeRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Delete borrado lógico de la ruta.
func (uc *RouteUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.requireRoute(ctx, id); err != nil {
		return err
	}
	return uc.routeRepo.SoftDelete(ctx, id)
}

// AddClient agrega un cliente a la ruta en la posición indicada.
func (uc *RouteUseCase) AddClient(ctx context.Context, routeID string, in dto.RouteStopRequest) (*dto.RouteResponse, error) {
	if _, err := uc.requireRoute(ctx, routeID); err != nil {
		return nil, err
	}
	if in.OrderIndex < 0 {
		return nil, domain.Invalid("order_index", "no puede ser negativo")
	}
	if err := uc.requireClient(ctx, in.ClientID); err != nil {
		return nil, err
	}
	rc := &entity.RouteClient{
		ID:         uuid.New().String(),
		RouteID:    routeID,
		ClientID:   in.ClientID,
		OrderIndex: in.OrderIndex,
	}
	if err := uc.routeRepo.AddClient(ctx, rc); err != nil {
		return nil, err
	}
	return uc.Get(ctx, routeID)
}

// RemoveClient quita un cliente de la ruta.
func (uc *RouteUseCase) RemoveClient(ctx context.Context, routeID, clientID string) error {
	if _, err := uc.requireRoute(ctx, routeID); err != nil {
		return err
	}
	return uc.routeRepo.RemoveClient(ctx, routeID, clientID)
}

// Assign programa la ruta para un usuario en una fecha (YYYY-MM-DD; vacío = hoy).
func (uc *RouteUseCase) Assign(ctx context.Context, routeID, userID, date string) (*dto.AssignmentResponse, error) {
	r, err := uc.requireRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !r.Active {
		return nil, fmt.Errorf("%w: la ruta está inactiva", domain.ErrConflict)
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	if !user.Active {
		return nil, domain.Invalid("user_id", "el usuario está inactivo")
	}
	now := uc.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date != "" {
		day, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, domain.Invalid("date", "formato esperado YYYY-MM-DD")
		}
	}
	a := &entity.RouteAssignment{
		ID:        uuid.New().String(),
		RouteID:   routeID,
		UserID:    userID,
		Date:      day,
		Status:    entity.AssignmentScheduled,
		CreatedAt: now,
	}
	if err := uc.routeRepo.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	out := toAssignmentResponse(a)
	return &out, nil
}

// UpdateAssignmentStatus cambia el estado de una asignación.
func (uc *RouteUseCase) UpdateAssignmentStatus(ctx context.Context, assignmentID, status string) (*dto.AssignmentResponse, error) {
	if !entity.ValidAssignmentStatus(status) {
		return nil, domain.Invalid("status", "estado de asignación desconocido")
	}
	a, err := uc.routeRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.routeRepo.UpdateAssignmentStatus(ctx, assignmentID, status); err != nil {
		return nil, err
	}
	a.Status = status
	out := toAssignmentResponse(a)
	return &out, nil
}

// Unassign elimina una asignación.
func (uc *RouteUseCase) Unassign(ctx context.Context, assignmentID string) error {
	a, err := uc.routeRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a == nil {
		return domain.ErrNotFound
	}
	return uc.routeRepo.DeleteAssignment(ctx, assignmentID)
}

// Optimized devuelve los clientes geolocalizados de la ruta ordenados por OrderIndex ascendente.
// Los clientes sin coordenadas se omiten.
func (uc *RouteUseCase) Optimized(ctx context.Context, routeID string) ([]dto.RouteStopResponse, error) {
	if _, err := uc.requireRoute(ctx, routeID); err != nil {
		return nil, err
	}
	stops, err := uc.routeRepo.ListClients(ctx, routeID)
	if err != nil {
		return nil, err
	}
	located := make([]*entity.RouteClient, 0, len(stops))
	for _, s := range stops {
		if s.Client != nil && s.Client.HasLocation() {
			located = append(located, s)
		}
	}
	sort.SliceStable(located, func(i, j int) bool { return located[i].OrderIndex < located[j].OrderIndex })
	out := make([]dto.RouteStopResponse, 0, len(located))
	for _, s := range located {
		out = append(out, toStopResponse(s))
	}
	return out, nil
}

func (uc *RouteUseCase) requireRoute(ctx context.Context, id string) (*entity.Route, error) {
	r, err := uc.routeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (uc *RouteUseCase) requireClient(ctx context.Context, id string) error {
	c, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil || !c.Active {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return nil
}

func toRouteResponse(r *entity.Route) *dto.RouteResponse {
	return &dto.RouteResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		CreatedBy:   r.CreatedBy,
		Active:      r.Active,
		Clients:     []dto.RouteStopResponse{},
		Assignments: []dto.AssignmentResponse{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toStopResponse(s *entity.RouteClient) dto.RouteStopResponse {
	out := dto.RouteStopResponse{ClientID: s.ClientID, OrderIndex: s.OrderIndex}
	if s.Client != nil {
		out.ClientName = s.Client.Name
		out.Address = s.Client.Address
		out.Latitude = s.Client.Latitude
		out.Longitude = s.Client.Longitude
	}
	return out
}

func toAssignmentResponse(a *entity.RouteAssignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:      a.ID,
		RouteID: a.RouteID,
		UserID:  a.UserID,
		Date:    a.Date.Format(dateLayout),
		Status:  a.Status,
	}
}
