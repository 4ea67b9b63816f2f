package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

type roleRepo struct{ repoBase }

func (r *roleRepo) Create(ctx context.Context, role *entity.Role) error {
	unlock, err := r.begin(ctx, "roles.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, other := range r.d().roles {
		if other.Name == role.Name {
			return fmt.Errorf("%w: rol %s", domain.ErrDuplicate, role.Name)
		}
	}
	stored := *role
	stored.Permissions = nil
	r.d().roles[role.ID] = stored
	r.d().rolePerms[role.ID] = nil
	return nil
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	unlock, err := r.begin(ctx, "roles.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	role, ok := r.d().roles[id]
	if !ok {
		return nil, nil
	}
	return r.load(role), nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	unlock, err := r.begin(ctx, "roles.GetByName")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, role := range r.d().roles {
		if role.Name == name {
			return r.load(role), nil
		}
	}
	return nil, nil
}

func (r *roleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	unlock, err := r.begin(ctx, "roles.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.sorted(), nil
}

func (r *roleRepo) First(ctx context.Context) (*entity.Role, error) {
	unlock, err := r.begin(ctx, "roles.First")
	if err != nil {
		return nil, err
	}
	defer unlock()
	all := r.sorted()
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *roleRepo) AddPermission(ctx context.Context, roleID, permissionID string) error {
	unlock, err := r.begin(ctx, "roles.AddPermission")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().roles[roleID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.d().permissions[permissionID]; !ok {
		return domain.ErrNotFound
	}
	if slices.Contains(r.d().rolePerms[roleID], permissionID) {
		return nil
	}
	r.d().rolePerms[roleID] = append(r.d().rolePerms[roleID], permissionID)
	return nil
}

func (r *roleRepo) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	unlock, err := r.begin(ctx, "roles.RemovePermission")
	if err != nil {
		return err
	}
	defer unlock()
	ids := r.d().rolePerms[roleID]
	i := slices.Index(ids, permissionID)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.d().rolePerms[roleID] = slices.Delete(slices.Clone(ids), i, i+1)
	return nil
}

func (r *roleRepo) sorted() []*entity.Role {
	out := make([]*entity.Role, 0, len(r.d().roles))
	for _, role := range r.d().roles {
		out = append(out, r.load(role))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *roleRepo) load(role entity.Role) *entity.Role {
	ids := r.d().rolePerms[role.ID]
	role.Permissions = make([]entity.Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.d().permissions[id]; ok {
			role.Permissions = append(role.Permissions, p)
		}
	}
	return &role
}

type permissionRepo struct{ repoBase }

func (r *permissionRepo) Create(ctx context.Context, p *entity.Permission) error {
	unlock, err := r.begin(ctx, "permissions.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, other := range r.d().permissions {
		if other.Name == p.Name {
			return fmt.Errorf("%w: permiso %s", domain.ErrDuplicate, p.Name)
		}
	}
	r.d().permissions[p.ID] = *p
	return nil
}

func (r *permissionRepo) GetByID(ctx context.Context, id string) (*entity.Permission, error) {
	unlock, err := r.begin(ctx, "permissions.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := r.d().permissions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *permissionRepo) GetByName(ctx context.Context, name string) (*entity.Permission, error) {
	unlock, err := r.begin(ctx, "permissions.GetByName")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, p := range r.d().permissions {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *permissionRepo) List(ctx context.Context, module string) ([]*entity.Permission, error) {
	unlock, err := r.begin(ctx, "permissions.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.Permission, 0, len(r.d().permissions))
	for _, p := range r.d().permissions {
		if module != "" && p.Module != module {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
