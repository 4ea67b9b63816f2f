package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/jwt"
	"github.com/jhoicas/distribucion-api/pkg/password"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthUseCase registro, login, renovación de token y verificación de credenciales.
type AuthUseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	jwtCfg   JWTConfig
	policy   password.Policy
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, roleRepo repository.RoleRepository, jwtCfg JWTConfig, policy password.Policy) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, roleRepo: roleRepo, jwtCfg: jwtCfg, policy: policy}
}

// ErrNoRoles no hay ningún rol que asignar al registrarse (falta correr el seed).
var ErrNoRoles = fmt.Errorf("%w: no hay roles disponibles", domain.ErrConflict)

// Register crea un usuario activo con el rol por defecto y devuelve su token.
// Si el rol "usuario_sistema" no existe se asigna el primer rol disponible; sin roles falla con ErrNoRoles.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" {
		return nil, domain.Invalid("", "username y email son requeridos")
	}
	if err := uc.policy.Validate(in.Password); err != nil {
		return nil, domain.Invalid("password", err.Error())
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el email ya está registrado", domain.ErrDuplicate)
	}
	existing, err = uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el nombre de usuario ya existe", domain.ErrDuplicate)
	}

	role, err := uc.defaultRole(ctx)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNoRoles
	}
	hash, err := uc.policy.Hash(in.Password)
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
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.loginResponse(user, role.Name)
}

// Login verifica email/contraseña. Email desconocido y contraseña errónea dan el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: credenciales incorrectas", domain.ErrUnauthorized)
	}
	if err := password.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%w: credenciales incorrectas", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	var roleName string
	if user.HasRole() {
		role, err := uc.roleRepo.GetByID(ctx, user.RoleID)
		if err != nil {
			return nil, err
		}
		if role != nil {
			roleName = role.Name
		}
	}
	return uc.loginResponse(user, roleName)
}

// Refresh emite un token nuevo para un usuario ya autenticado.
func (uc *AuthUseCase) Refresh(_ context.Context, user *entity.User) (*dto.TokenResponse, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	return uc.issue(user)
}

// Authenticate resuelve el token a un usuario activo.
// Token ausente, malformado, vencido, mal firmado o de un usuario inexistente: ErrUnauthorized.
// Usuario desactivado: ErrInactiveUser. Un fallo de persistencia se devuelve tal cual.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token vacío", domain.ErrUnauthorized)
	}
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token inválido o expirado", domain.ErrUnauthorized)
	}
	user, err := uc.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("resolver usuario del token: %w", err)
	}
	if user == nil || (claims.UserID != "" && claims.UserID != user.ID) {
		return nil, fmt.Errorf("%w: token inválido o expirado", domain.ErrUnauthorized)
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (uc *AuthUseCase) defaultRole(ctx context.Context) (*entity.Role, error) {
	role, err := uc.roleRepo.GetByName(ctx, entity.DefaultRole)
	if err != nil {
		return nil, err
	}
	if role != nil {
		return role, nil
	}
	return uc.roleRepo.First(ctx)
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.TokenResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, user.Email, user.ID, uc.jwtCfg.TTL)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(uc.jwtCfg.TTL.Seconds()),
	}, nil
}

func (uc *AuthUseCase) loginResponse(user *entity.User, roleName string) (*dto.LoginResponse, error) {
	tok, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{TokenResponse: *tok, User: *toUserResponse(user, roleName)}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User, roleName string) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		RoleID:    u.RoleID,
		RoleName:  roleName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
