package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

type userRepo struct{ repoBase }

func (r *userRepo) Create(ctx context.Context, u *entity.User) error {
	unlock, err := r.begin(ctx, "users.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.checkUnique(u); err != nil {
		return err
	}
	r.d().users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	unlock, err := r.begin(ctx, "users.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	u, ok := r.d().users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, "users.GetByEmail", func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.find(ctx, "users.GetByUsername", func(u entity.User) bool { return u.Username == username })
}

func (r *userRepo) find(ctx context.Context, op string, match func(entity.User) bool) (*entity.User, error) {
	unlock, err := r.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, u := range r.d().users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(ctx context.Context, u *entity.User) error {
	unlock, err := r.begin(ctx, "users.Update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.d().users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(u); err != nil {
		return err
	}
	r.d().users[u.ID] = *u
	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, userID, roleID string) error {
	unlock, err := r.begin(ctx, "users.UpdateRole")
	if err != nil {
		return err
	}
	defer unlock()
	u, ok := r.d().users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.RoleID = roleID
	r.d().users[userID] = u
	return nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	unlock, err := r.begin(ctx, "users.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*entity.User, 0, len(r.d().users))
	for _, u := range r.d().users {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, limit, offset), nil
}

func (r *userRepo) checkUnique(u *entity.User) error {
	for _, other := range r.d().users {
		if other.ID == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("%w: email %s", domain.ErrDuplicate, u.Email)
		}
		if other.Username == u.Username {
			return fmt.Errorf("%w: username %s", domain.ErrDuplicate, u.Username)
		}
	}
	return nil
}
