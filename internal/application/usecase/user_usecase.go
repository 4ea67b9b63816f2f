package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/password"
)

// UserUseCase aplica reglas de negocio para usuarios (perfil propio y administración).
type UserUseCase struct {
	repo     repository.UserRepository
	roleRepo repository.RoleRepository
	policy   password.Policy
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roleRepo repository.RoleRepository, policy password.Policy) *UserUseCase {
	return &UserUseCase{repo: repo, roleRepo: roleRepo, policy: policy}
}

// Me perfil del usuario autenticado.
func (uc *UserUseCase) Me(ctx context.Context, user *entity.User) (*dto.UserWithPermissionsResponse, error) {
	role, err := uc.role(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return withPermissions(user, role), nil
}

// UpdateMe cambia username, email o contraseña del propio usuario.
func (uc *UserUseCase) UpdateMe(ctx context.Context, user *entity.User, in dto.UpdateMeRequest) (*dto.UserResponse, error) {
	if in.Username != nil && strings.TrimSpace(*in.Username) != user.Username {
		username := strings.TrimSpace(*in.Username)
		other, err := uc.repo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, fmt.Errorf("%w: el nombre de usuario ya existe", domain.ErrDuplicate)
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, fmt.Errorf("%w: el email ya está registrado", domain.ErrDuplicate)
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if err := uc.policy.Validate(*in.Password); err != nil {
			return nil, domain.Invalid("password", err.Error())
		}
		hash, err := uc.policy.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.response(ctx, user)
}

// DeactivateMe desactiva la cuenta propia; los tokens existentes dejan de servir.
func (uc *UserUseCase) DeactivateMe(ctx context.Context, user *entity.User) error {
	user.Active = false
	user.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, user)
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return uc.response(ctx, user)
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, limit, offset int) (*dto.UserListResponse, error) {
	users, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	roles, err := uc.roleIndex(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *entityToUserResponse(u, roles[u.RoleID]))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// ListWithPermissions usuarios con sus permisos efectivos.
func (uc *UserUseCase) ListWithPermissions(ctx context.Context, limit, offset int) ([]dto.UserWithPermissionsResponse, error) {
	users, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	roles, err := uc.roleIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserWithPermissionsResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *withPermissions(u, roles[u.RoleID]))
	}
	return out, nil
}

// ChangeRole asigna un rol existente a un usuario.
func (uc *UserUseCase) ChangeRole(ctx context.Context, userID, roleID string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, userID)
	}
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleID)
	}
	if err := uc.repo.UpdateRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	user.RoleID = roleID
	return entityToUserResponse(user, role), nil
}

func (uc *UserUseCase) response(ctx context.Context, user *entity.User) (*dto.UserResponse, error) {
	role, err := uc.role(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user, role), nil
}

func (uc *UserUseCase) role(ctx context.Context, roleID string) (*entity.Role, error) {
	if roleID == "" {
		return nil, nil
	}
	return uc.roleRepo.GetByID(ctx, roleID)
}

func (uc *UserUseCase) roleIndex(ctx context.Context) (map[string]*entity.Role, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*entity.Role, len(roles))
	for _, r := range roles {
		idx[r.ID] = r
	}
	return idx, nil
}

func withPermissions(u *entity.User, role *entity.Role) *dto.UserWithPermissionsResponse {
	perms := []string{}
	if role != nil && role.Active {
		perms = role.PermissionNames()
	}
	return &dto.UserWithPermissionsResponse{UserResponse: *entityToUserResponse(u, role), Permissions: perms}
}

func entityToUserResponse(u *entity.User, role *entity.Role) *dto.UserResponse {
	out := &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if role != nil {
		out.RoleName = role.Name
	}
	return out
}
