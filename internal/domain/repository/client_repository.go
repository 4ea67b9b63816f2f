package repository

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByNIT(ctx context.Context, nit string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Client, error)
	SoftDelete(ctx context.Context, id string) error
}
