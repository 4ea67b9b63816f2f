package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/password"
)

// AdminInput datos del usuario administrador a crear.
type AdminInput struct {
	Username string
	Email    string
	Password string
	Role     string // por defecto "administrador"
}

// CreateAdmin crea un usuario activo con el rol indicado. El rol debe existir (correr seed antes).
func CreateAdmin(
	ctx context.Context,
	users repository.UserRepository,
	roles repository.RoleRepository,
	policy password.Policy,
	in AdminInput,
) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" {
		return nil, domain.Invalid("", "username y email son requeridos")
	}
	if err := policy.Validate(in.Password); err != nil {
		return nil, domain.Invalid("password", err.Error())
	}
	roleName := in.Role
	if roleName == "" {
		roleName = entity.RoleAdministrador
	}
	role, err := roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleName)
	}
	hash, err := policy.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		RoleID:       role.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
