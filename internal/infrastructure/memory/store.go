// Package memory implementa los puertos de persistencia en memoria.
// Se usa con APP_STORAGE=memory (demo local sin PostgreSQL) y en los tests de casos de uso.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// state datos del store. Se guardan valores (no punteros) para poder clonar el estado completo.
type state struct {
	users       map[string]entity.User
	roles       map[string]entity.Role // sin Permissions; ver rolePerms
	rolePerms   map[string][]string    // roleID -> permissionIDs en orden de asignación
	permissions map[string]entity.Permission
	products    map[string]entity.Product
	clients     map[string]entity.Client
	orders      map[string]entity.Order // sin Lines; ver lines
	lines       map[string][]entity.OrderLine
	routes      map[string]entity.Route
	stops       map[string][]entity.RouteClient // routeID -> paradas
	assignments map[string]entity.RouteAssignment
	deliveries  map[string]entity.Delivery
	payments    map[string]entity.Payment
}

func newState() state {
	return state{
		users:       map[string]entity.User{},
		roles:       map[string]entity.Role{},
		rolePerms:   map[string][]string{},
		permissions: map[string]entity.Permission{},
		products:    map[string]entity.Product{},
		clients:     map[string]entity.Client{},
		orders:      map[string]entity.Order{},
		lines:       map[string][]entity.OrderLine{},
		routes:      map[string]entity.Route{},
		stops:       map[string][]entity.RouteClient{},
		assignments: map[string]entity.RouteAssignment{},
		deliveries:  map[string]entity.Delivery{},
		payments:    map[string]entity.Payment{},
	}
}

func (s state) clone() state {
	out := state{
		users:       maps.Clone(s.users),
		roles:       maps.Clone(s.roles),
		rolePerms:   make(map[string][]string, len(s.rolePerms)),
		permissions: maps.Clone(s.permissions),
		products:    maps.Clone(s.products),
		clients:     maps.Clone(s.clients),
		orders:      maps.Clone(s.orders),
		lines:       make(map[string][]entity.OrderLine, len(s.lines)),
		routes:      maps.Clone(s.routes),
		stops:       make(map[string][]entity.RouteClient, len(s.stops)),
		assignments: maps.Clone(s.assignments),
		deliveries:  maps.Clone(s.deliveries),
		payments:    maps.Clone(s.payments),
	}
	for k, v := range s.rolePerms {
		out.rolePerms[k] = slices.Clone(v)
	}
	for k, v := range s.lines {
		out.lines[k] = slices.Clone(v)
	}
	for k, v := range s.stops {
		out.stops[k] = slices.Clone(v)
	}
	return out
}

// Store base de datos en memoria. Las transacciones toman el lock del store completo,
// por lo que se serializan entre sí; si fn falla el estado vuelve a la foto previa.
type Store struct {
	mu     sync.Mutex
	data   state
	faults map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), faults: map[string]error{}}
}

// FailOn hace que la operación op (ej. "orders.CreateLine") devuelva err.
// Con err nil se elimina el fallo. Solo para tests.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// ─── Repos ────────────────────────────────────────────────────────────────────

func (s *Store) Users() repository.UserRepository             { return &userRepo{repoBase{s: s}} }
func (s *Store) Roles() repository.RoleRepository             { return &roleRepo{repoBase{s: s}} }
func (s *Store) Permissions() repository.PermissionRepository { return &permissionRepo{repoBase{s: s}} }
func (s *Store) Products() repository.ProductRepository       { return &productRepo{repoBase{s: s}} }
func (s *Store) Clients() repository.ClientRepository         { return &clientRepo{repoBase{s: s}} }
func (s *Store) Orders() repository.OrderRepository           { return &orderRepo{repoBase{s: s}} }
func (s *Store) Routes() repository.RouteRepository           { return &routeRepo{repoBase{s: s}} }
func (s *Store) Deliveries() repository.DeliveryRepository    { return &deliveryRepo{repoBase{s: s}} }
func (s *Store) Analytics() repository.AnalyticsRepository    { return &analyticsRepo{repoBase{s: s}} }

// ─── Transacciones ────────────────────────────────────────────────────────────

func (s *Store) run(ctx context.Context, fn func(tx repoBase) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(repoBase{s: s, tx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// RunOrder transacción de pedidos.
func (s *Store) RunOrder(ctx context.Context, fn func(repository.ProductRepository, repository.OrderRepository) error) error {
	return s.run(ctx, func(tx repoBase) error {
		return fn(&productRepo{tx}, &orderRepo{tx})
	})
}

// RunProduct transacción de catálogo de productos.
func (s *Store) RunProduct(ctx context.Context, fn func(repository.ProductRepository) error) error {
	return s.run(ctx, func(tx repoBase) error {
		return fn(&productRepo{tx})
	})
}

// RunRoute transacción de rutas.
func (s *Store) RunRoute(ctx context.Context, fn func(repository.RouteRepository) error) error {
	return s.run(ctx, func(tx repoBase) error {
		return fn(&routeRepo{tx})
	})
}

// RunRole transacción de roles y permisos.
func (s *Store) RunRole(ctx context.Context, fn func(repository.RoleRepository, repository.PermissionRepository) error) error {
	return s.run(ctx, func(tx repoBase) error {
		return fn(&roleRepo{tx}, &permissionRepo{tx})
	})
}

// RunDelivery transacción de entregas.
func (s *Store) RunDelivery(ctx context.Context, fn func(repository.OrderRepository, repository.DeliveryRepository) error) error {
	return s.run(ctx, func(tx repoBase) error {
		return fn(&orderRepo{tx}, &deliveryRepo{tx})
	})
}

// repoBase comparte el store; dentro de una transacción el lock ya está tomado.
type repoBase struct {
	s  *Store
	tx bool
}

// begin toma el lock (fuera de transacción) y aplica el fallo inyectado para op.
func (r repoBase) begin(ctx context.Context, op string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.tx {
		r.s.mu.Lock()
	}
	unlock := func() {
		if !r.tx {
			r.s.mu.Unlock()
		}
	}
	if err, ok := r.s.faults[op]; ok {
		unlock()
		return nil, err
	}
	return unlock, nil
}

func (r repoBase) d() *state { return &r.s.data }

// page aplica limit/offset a un slice ya ordenado. limit <= 0 significa sin límite.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
