package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	apphttp "github.com/jhoicas/distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeVerifier resuelve tokens fijos: "ok-<rol>" activo, "inactivo" desactivado, "caido" error de infraestructura.
type fakeVerifier struct{}

func (fakeVerifier) Authenticate(_ context.Context, token string) (*entity.User, error) {
	switch token {
	case "inactivo":
		return nil, domain.ErrInactiveUser
	case "caido":
		return nil, errors.New("conexión rechazada")
	}
	if len(token) > 3 && token[:3] == "ok-" {
		return &entity.User{ID: "u-" + token[3:], RoleID: token[3:], Active: true}, nil
	}
	return nil, domain.ErrUnauthorized
}

// fakeResolver rol = RoleID del usuario; cuenta las llamadas para verificar la memoización.
type fakeResolver struct {
	mu    sync.Mutex
	calls int
	fail  error
}

var fakePerms = map[string][]string{
	entity.RoleAdministrador: {entity.PermProductsManage, entity.PermOrdersManage},
	entity.RoleVendedor:      {entity.PermOrdersCreate, entity.PermOrdersView},
}

func (r *fakeResolver) RoleOf(_ context.Context, u *entity.User) (*entity.Role, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	names, ok := fakePerms[u.RoleID]
	if !ok {
		return nil, nil
	}
	role := &entity.Role{Name: u.RoleID, Active: true}
	for _, n := range names {
		role.Permissions = append(role.Permissions, entity.Permission{Name: n, Active: true})
	}
	return role, nil
}

type denialCounter struct {
	mu    sync.Mutex
	gates map[string]int
}

func (d *denialCounter) AuthzDenied(gate string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gates == nil {
		d.gates = map[string]int{}
	}
	d.gates[gate]++
}

func (d *denialCounter) count(gate string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gates[gate]
}

// buildGuardApp construye una aplicación Fiber mínima con:
//   - Authenticate para resolver el usuario activo
//   - RequirePermission / RequireRole encadenados en rutas separadas
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildGuardApp(resolver *fakeResolver, denials *denialCounter) *fiber.App {
	app := fiber.New()
	guard := apphttp.NewGuard(fakeVerifier{}, resolver, denials, logger.Nop())
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "user": apphttp.GetUserID(c)})
	}
	app.Get("/activo", guard.Authenticate(), ok)
	app.Get("/gestion", guard.Authenticate(), guard.RequirePermission(entity.PermOrdersManage), ok)
	app.Get("/doble",
		guard.Authenticate(),
		guard.RequirePermission(entity.PermProductsManage),
		guard.RequireRole(entity.RoleAdministrador),
		ok,
	)
	app.Get("/admin", guard.Authenticate(), guard.RequireRole(entity.RoleAdministrador, entity.RoleGerente), ok)
	return app
}

// doGet lanza una petición GET y devuelve la respuesta.
func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeError lee el cuerpo como dto.ErrorResponse.
func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), "cuerpo: %s", body)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Authenticate
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthenticate_CodigosDeRechazo(t *testing.T) {
	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Basic abc", "INVALID_TOKEN"},
		{"token inválido", "Bearer basura", "INVALID_TOKEN"},
		{"usuario inactivo", "Bearer inactivo", "INACTIVE_USER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			denials := &denialCounter{}
			resp := doGet(t, buildGuardApp(&fakeResolver{}, denials), "/activo", tc.header)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Code)
			assert.Equal(t, 1, denials.count(apphttp.GateActiveUser))
		})
	}
}

func TestAuthenticate_UsuarioActivoPasa(t *testing.T) {
	resp := doGet(t, buildGuardApp(&fakeResolver{}, &denialCounter{}), "/activo", "Bearer ok-vendedor")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "u-vendedor", out["user"])
}

func TestAuthenticate_FalloDeInfraestructuraEs500(t *testing.T) {
	resp := doGet(t, buildGuardApp(&fakeResolver{}, &denialCounter{}), "/activo", "Bearer caido")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "conexión rechazada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission / RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_SinPermisoDevuelve403ConNombre(t *testing.T) {
	denials := &denialCounter{}
	resp := doGet(t, buildGuardApp(&fakeResolver{}, denials), "/gestion", "Bearer ok-vendedor")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "FORBIDDEN", e.Code)
	assert.Equal(t, "se requiere el permiso 'orders.manage'", e.Message)
	assert.Equal(t, 1, denials.count(apphttp.GatePermission))
}

func TestRequirePermission_ConPermisoPasa(t *testing.T) {
	resp := doGet(t, buildGuardApp(&fakeResolver{}, &denialCounter{}), "/gestion", "Bearer ok-administrador")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequirePermission_UsuarioSinRolNoTienePermisos(t *testing.T) {
	resp := doGet(t, buildGuardApp(&fakeResolver{}, &denialCounter{}), "/gestion", "Bearer ok-desconocido")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequirePermission_FalloDelResolverEs500(t *testing.T) {
	resolver := &fakeResolver{fail: errors.New("timeout")}
	resp := doGet(t, buildGuardApp(resolver, &denialCounter{}), "/gestion", "Bearer ok-administrador")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGuard_ResuelveElRolUnaVezPorPeticion(t *testing.T) {
	resolver := &fakeResolver{}
	resp := doGet(t, buildGuardApp(resolver, &denialCounter{}), "/doble", "Bearer ok-administrador")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resolver.calls)
}

func TestRequireRole_VariosRolesPermitidos(t *testing.T) {
	app := buildGuardApp(&fakeResolver{}, &denialCounter{})

	resp := doGet(t, app, "/admin", "Bearer ok-administrador")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	denials := &denialCounter{}
	resp = doGet(t, buildGuardApp(&fakeResolver{}, denials), "/admin", "Bearer ok-vendedor")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "se requiere el rol 'administrador' o 'gerente'", decodeError(t, resp).Message)
	assert.Equal(t, 1, denials.count(apphttp.GateRole))
}
