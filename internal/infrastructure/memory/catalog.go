package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ─── Productos ────────────────────────────────────────────────────────────────

type productRepo struct{ repoBase }

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	unlock, err := r.begin(ctx, "products.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.checkSKU(p); err != nil {
		return err
	}
	r.d().products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	unlock, err := r.begin(ctx, "products.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el store bloqueado.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	unlock, err := r.begin(ctx, "products.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	unlock, err := r.begin(ctx, "products.GetBySKU")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, p := range r.d().products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	unlock, err := r.begin(ctx, "products.Update")
	if err != nil {
		return err
	}
	defer unlock()
	current, ok := r.d().products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.checkSKU(p); err != nil {
		return err
	}
	updated := *p
	updated.Stock = current.Stock
	r.d().products[p.ID] = updated
	return nil
}

func (r *productRepo) SetStock(ctx context.Context, id string, stock int) error {
	unlock, err := r.begin(ctx, "products.SetStock")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	r.d().products[id] = p
	return nil
}

func (r *productRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	unlock, err := r.begin(ctx, "products.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Product, 0, len(r.d().products))
	for _, p := range r.d().products {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return page(out, limit, offset), nil
}

func (r *productRepo) SoftDelete(ctx context.Context, id string) error {
	unlock, err := r.begin(ctx, "products.SoftDelete")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	r.d().products[id] = p
	return nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	unlock, err := r.begin(ctx, "products.DecrementStock")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return domain.NewProductNotFound(id)
	}
	if p.Stock < qty {
		return domain.NewInsufficientStock(id, qty, p.Stock).WithName(p.Name)
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	r.d().products[id] = p
	return nil
}

func (r *productRepo) IncrementStock(ctx context.Context, id string, qty int) error {
	unlock, err := r.begin(ctx, "products.IncrementStock")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := r.d().products[id]
	if !ok {
		return domain.NewProductNotFound(id)
	}
	p.Stock += qty
	p.UpdatedAt = time.Now()
	r.d().products[id] = p
	return nil
}

func (r *productRepo) checkSKU(p *entity.Product) error {
	for _, other := range r.d().products {
		if other.ID != p.ID && other.SKU == p.SKU {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
		}
	}
	return nil
}

// ─── Clientes ─────────────────────────────────────────────────────────────────

type clientRepo struct{ repoBase }

func (r *clientRepo) Create(ctx context.Context, c *entity.Client) error {
	unlock, err := r.begin(ctx, "clients.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.checkNIT(c); err != nil {
		return err
	}
	r.d().clients[c.ID] = copyClient(*c)
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	unlock, err := r.begin(ctx, "clients.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	c, ok := r.d().clients[id]
	if !ok {
		return nil, nil
	}
	c = copyClient(c)
	return &c, nil
}

func (r *clientRepo) GetByNIT(ctx context.Context, nit string) (*entity.Client, error) {
	unlock, err := r.begin(ctx, "clients.GetByNIT")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, c := range r.d().clients {
		if c.NIT == nit {
			c = copyClient(c)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *clientRepo) Update(ctx context.Context, c *entity.Client) error {
	unlock, err := r.begin(ctx, "clients.Update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkNIT(c); err != nil {
		return err
	}
	r.d().clients[c.ID] = copyClient(*c)
	return nil
}

func (r *clientRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Client, error) {
	unlock, err := r.begin(ctx, "clients.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Client, 0, len(r.d().clients))
	for _, c := range r.d().clients {
		if onlyActive && !c.Active {
			continue
		}
		c = copyClient(c)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return page(out, limit, offset), nil
}

func (r *clientRepo) SoftDelete(ctx context.Context, id string) error {
	unlock, err := r.begin(ctx, "clients.SoftDelete")
	if err != nil {
		return err
	}
	defer unlock()
	c, ok := r.d().clients[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	r.d().clients[id] = c
	return nil
}

func (r *clientRepo) checkNIT(c *entity.Client) error {
	for _, other := range r.d().clients {
		if other.ID != c.ID && other.NIT == c.NIT {
			return fmt.Errorf("%w: NIT %s", domain.ErrDuplicate, c.NIT)
		}
	}
	return nil
}

// copyClient evita compartir los punteros de coordenadas con el llamador.
func copyClient(c entity.Client) entity.Client {
	if c.Latitude != nil {
		lat := *c.Latitude
		c.Latitude = &lat
	}
	if c.Longitude != nil {
		lng := *c.Longitude
		c.Longitude = &lng
	}
	return c
}
