package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// Locals keys del usuario autenticado y su rol resuelto.
const (
	LocalUser = "user"
	localRole = "role"
)

// Gates que cuentan las denegaciones en métricas.
const (
	GateActiveUser = "active_user"
	GateRole       = "role"
	GatePermission = "permission"
)

// CredentialVerifier resuelve un bearer token a un usuario activo.
type CredentialVerifier interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// RoleResolver carga el rol efectivo de un usuario; (nil, nil) si no tiene.
type RoleResolver interface {
	RoleOf(ctx context.Context, user *entity.User) (*entity.Role, error)
}

// DenialRecorder registra cada petición rechazada por un guard.
type DenialRecorder interface {
	AuthzDenied(gate string)
}

// Guard encadena autenticación y autorización como middlewares de Fiber.
type Guard struct {
	verifier CredentialVerifier
	resolver RoleResolver
	denials  DenialRecorder
	log      *logger.Logger
}

// NewGuard construye el guard. denials puede ser nil.
func NewGuard(verifier CredentialVerifier, resolver RoleResolver, denials DenialRecorder, log *logger.Logger) *Guard {
	return &Guard{verifier: verifier, resolver: resolver, denials: denials, log: log}
}

// Authenticate valida el Bearer Token y deja el usuario activo en c.Locals.
// Sin token: MISSING_TOKEN; inválido o vencido: INVALID_TOKEN; usuario desactivado: INACTIVE_USER.
func (g *Guard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			g.denied(GateActiveUser)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			g.denied(GateActiveUser)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			g.denied(GateActiveUser)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		user, err := g.verifier.Authenticate(c.UserContext(), tokenString)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrInactiveUser):
			g.denied(GateActiveUser)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INACTIVE_USER", Message: "usuario inactivo"})
		case errors.Is(err, domain.ErrUnauthorized):
			g.denied(GateActiveUser)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		default:
			return writeError(c, g.log, err)
		}
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// RequireRole exige que el rol efectivo del usuario sea uno de roles.
// Debe ir después de Authenticate.
func (g *Guard) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := g.roleOf(c)
		if err != nil {
			return writeError(c, g.log, err)
		}
		if role != nil {
			for _, name := range roles {
				if role.Name == name {
					return c.Next()
				}
			}
		}
		g.denied(GateRole)
		return writeError(c, g.log, &domain.PermissionError{Role: strings.Join(roles, "' o '")})
	}
}

// RequirePermission exige que el rol del usuario incluya el permiso name.
// Debe ir después de Authenticate.
func (g *Guard) RequirePermission(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := g.roleOf(c)
		if err != nil {
			return writeError(c, g.log, err)
		}
		if !role.HasPermission(name) {
			g.denied(GatePermission)
			return writeError(c, g.log, &domain.PermissionError{Permission: name})
		}
		return c.Next()
	}
}

// resolvedRole envoltorio para memoizar también el resultado "sin rol".
type resolvedRole struct {
	role *entity.Role
}

// roleOf resuelve el rol una sola vez por petición.
func (g *Guard) roleOf(c *fiber.Ctx) (*entity.Role, error) {
	if v, ok := c.Locals(localRole).(*resolvedRole); ok {
		return v.role, nil
	}
	user := GetUser(c)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	role, err := g.resolver.RoleOf(c.UserContext(), user)
	if err != nil {
		return nil, err
	}
	c.Locals(localRole, &resolvedRole{role: role})
	return role, nil
}

func (g *Guard) denied(gate string) {
	if g.denials != nil {
		g.denials.AuthzDenied(gate)
	}
}

// GetUser devuelve el usuario autenticado (después de Authenticate).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetUserID devuelve el ID del usuario autenticado, "" si no hay.
func GetUserID(c *fiber.Ctx) string {
	if u := GetUser(c); u != nil {
		return u.ID
	}
	return ""
}
