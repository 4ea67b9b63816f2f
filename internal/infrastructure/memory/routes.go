package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

type routeRepo struct{ repoBase }

func (r *routeRepo) Create(ctx context.Context, rt *entity.Route) error {
	unlock, err := r.begin(ctx, "routes.Create")
	if err != nil {
		return err
	}
	defer unlock()
	r.d().routes[rt.ID] = *rt
	return nil
}

func (r *routeRepo) GetByID(ctx context.Context, id string) (*entity.Route, error) {
	unlock, err := r.begin(ctx, "routes.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	rt, ok := r.d().routes[id]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *routeRepo) List(ctx context.Context, routeType string, onlyActive bool) ([]*entity.Route, error) {
	unlock, err := r.begin(ctx, "routes.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Route, 0, len(r.d().routes))
	for _, rt := range r.d().routes {
		if routeType != "" && rt.Type != routeType {
			continue
		}
		if onlyActive && !rt.Active {
			continue
		}
		out = append(out, &rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *routeRepo) Update(ctx context.Context, rt *entity.Route) error {
	unlock, err := r.begin(ctx, "routes.Update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().routes[rt.ID]; !ok {
		return domain.ErrNotFound
	}
	r.d().routes[rt.ID] = *rt
	return nil
}

func (r *routeRepo) SoftDelete(ctx context.Context, id string) error {
	unlock, err := r.begin(ctx, "routes.SoftDelete")
	if err != nil {
		return err
	}
	defer unlock()
	rt, ok := r.d().routes[id]
	if !ok {
		return domain.ErrNotFound
	}
	rt.Active = false
	rt.UpdatedAt = time.Now()
	r.d().routes[id] = rt
	return nil
}

func (r *routeRepo) AddClient(ctx context.Context, rc *entity.RouteClient) error {
	unlock, err := r.begin(ctx, "routes.AddClient")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().routes[rc.RouteID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.d().clients[rc.ClientID]; !ok {
		return domain.ErrNotFound
	}
	for _, s := range r.d().stops[rc.RouteID] {
		if s.ClientID == rc.ClientID {
			return fmt.Errorf("%w: el cliente ya está en la ruta", domain.ErrDuplicate)
		}
	}
	stored := *rc
	stored.Client = nil
	r.d().stops[rc.RouteID] = append(r.d().stops[rc.RouteID], stored)
	return nil
}

func (r *routeRepo) RemoveClient(ctx context.Context, routeID, clientID string) error {
	unlock, err := r.begin(ctx, "routes.RemoveClient")
	if err != nil {
		return err
	}
	defer unlock()
	stops := r.d().stops[routeID]
	i := slices.IndexFunc(stops, func(s entity.RouteClient) bool { return s.ClientID == clientID })
	if i < 0 {
		return domain.ErrNotFound
	}
	r.d().stops[routeID] = slices.Delete(slices.Clone(stops), i, i+1)
	return nil
}

func (r *routeRepo) ListClients(ctx context.Context, routeID string) ([]*entity.RouteClient, error) {
	unlock, err := r.begin(ctx, "routes.ListClients")
	if err != nil {
		return nil, err
	}
	defer unlock()
	stops := r.d().stops[routeID]
	out := make([]*entity.RouteClient, 0, len(stops))
	for _, s := range stops {
		if c, ok := r.d().clients[s.ClientID]; ok {
			c = copyClient(c)
			s.Client = &c
		}
		out = append(out, &s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *routeRepo) CreateAssignment(ctx context.Context, a *entity.RouteAssignment) error {
	unlock, err := r.begin(ctx, "routes.CreateAssignment")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().routes[a.RouteID]; !ok {
		return domain.ErrNotFound
	}
	r.d().assignments[a.ID] = *a
	return nil
}

func (r *routeRepo) GetAssignment(ctx context.Context, id string) (*entity.RouteAssignment, error) {
	unlock, err := r.begin(ctx, "routes.GetAssignment")
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, ok := r.d().assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *routeRepo) ListAssignments(ctx context.Context, routeID string) ([]*entity.RouteAssignment, error) {
	unlock, err := r.begin(ctx, "routes.ListAssignments")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.RouteAssignment, 0)
	for _, a := range r.d().assignments {
		if a.RouteID == routeID {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (r *routeRepo) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	unlock, err := r.begin(ctx, "routes.UpdateAssignmentStatus")
	if err != nil {
		return err
	}
	defer unlock()
	a, ok := r.d().assignments[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	r.d().assignments[id] = a
	return nil
}

func (r *routeRepo) DeleteAssignment(ctx context.Context, id string) error {
	unlock, err := r.begin(ctx, "routes.DeleteAssignment")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().assignments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d().assignments, id)
	return nil
}
