package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/distribucion-api/internal/application/analytics"
	"github.com/jhoicas/distribucion-api/internal/application/auth"
	"github.com/jhoicas/distribucion-api/internal/application/authz"
	"github.com/jhoicas/distribucion-api/internal/application/bootstrap"
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/application/route"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/distribucion-api/pkg/jwt"
	"github.com/jhoicas/distribucion-api/pkg/logger"
	"github.com/jhoicas/distribucion-api/pkg/password"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "distribucion-api-test"
	testPassword  = "Clave#Segura1"
)

type apiFixture struct {
	app    *fiber.App
	store  *memory.Store
	users  map[string]*entity.User // por nombre de rol
	tokens map[string]string       // "Bearer ..." por nombre de rol
}

func newAPIFixture(t *testing.T, loginRateLimit int) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	_, err := bootstrap.Seed(ctx, store)
	require.NoError(t, err)

	policy := password.Policy{MinLength: 8, MaxLength: 128, Cost: bcrypt.MinCost}
	log := logger.Nop()

	deps := apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(store.Users(), store.Roles(), auth.JWTConfig{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer}, policy),
		UserUC:    usecase.NewUserUseCase(store.Users(), store.Roles(), policy),
		RoleUC:    usecase.NewRoleUseCase(store, store.Roles(), store.Permissions()),
		ProductUC: usecase.NewProductUseCase(store, store.Products()),
		ClientUC:  usecase.NewClientUseCase(store.Clients()),
		OrderUC: order.NewOrderUseCase(store, store.Orders(), store.Clients(), store.Users(), store.Products(),
			pdf.NewReceiptGenerator("Distribuidora de Prueba"), log),
		RouteUC:        route.NewRouteUseCase(store, store.Routes(), store.Clients(), store.Users()),
		DeliveryUC:     usecase.NewDeliveryUseCase(store, store.Deliveries(), store.Orders()),
		DashboardUC:    appanalytics.NewDashboardUseCase(store.Analytics(), nil, 0, log),
		Resolver:       authz.NewResolver(store.Roles()),
		Log:            log,
		LoginRateLimit: loginRateLimit,
	}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, deps)

	f := &apiFixture{app: app, store: store, users: map[string]*entity.User{}, tokens: map[string]string{}}
	for _, role := range []string{entity.RoleGerente, entity.RoleAdministrador, entity.RoleVendedor, entity.RoleRepartidor} {
		u, err := bootstrap.CreateAdmin(ctx, store.Users(), store.Roles(), policy, bootstrap.AdminInput{
			Username: role,
			Email:    role + "@distribucion.test",
			Password: testPassword,
			Role:     role,
		})
		require.NoError(t, err)
		f.users[role] = u
		f.tokens[role] = bearer(t, u, time.Hour)
	}
	return f
}

func bearer(t *testing.T, u *entity.User, ttl time.Duration) string {
	t.Helper()
	tok, err := jwt.Generate(testJWTSecret, testIssuer, u.Email, u.ID, ttl)
	require.NoError(t, err)
	return "Bearer " + tok
}

// do lanza la petición con cuerpo JSON opcional y devuelve status y cuerpo.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		rd = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func errCode(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), "cuerpo: %s", body)
	return e
}

// seedCatalog crea un cliente y un producto con el stock indicado usando el administrador.
func (f *apiFixture) seedCatalog(t *testing.T, stock int) (clientID, productID string) {
	t.Helper()
	admin := f.tokens[entity.RoleAdministrador]

	status, body := f.do(t, http.MethodPost, "/api/clientes", admin, map[string]any{
		"name": "Tienda La Esquina", "nit": "900123456-1", "latitude": 4.65, "longitude": -74.05,
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var client dto.ClientResponse
	require.NoError(t, json.Unmarshal(body, &client))

	status, body = f.do(t, http.MethodPost, "/api/productos", admin, map[string]any{
		"name": "Arroz 500g", "sku": "ARZ-500", "price": "10.00", "stock": stock,
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var product dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &product))
	return client.ID, product.ID
}

func orderBody(clientID, productID string, qty int) map[string]any {
	return map[string]any{
		"client_id": clientID,
		"lines": []map[string]any{
			{"product_id": productID, "quantity": qty, "unit_price": "10.00"},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RegistroYLogin(t *testing.T) {
	f := newAPIFixture(t, 0)

	status, body := f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "nuevo", "email": "Nuevo@Distribucion.test", "password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var reg dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &reg))
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "nuevo@distribucion.test", reg.User.Email)

	status, _ = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "otro", "email": "nuevo@distribucion.test", "password": testPassword,
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "nuevo@distribucion.test", "password": "Incorrecta#1",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, body).Code)

	status, body = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "nuevo@distribucion.test", "password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = f.do(t, http.MethodGet, "/api/users/me", "Bearer "+reg.AccessToken, nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
}

func TestAPI_RegistroValidaCuerpo(t *testing.T) {
	f := newAPIFixture(t, 0)

	status, body := f.do(t, http.MethodPost, "/api/auth/register", "", "{no es json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", errCode(t, body).Code)

	status, body = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "ab", "email": "no-es-email", "password": testPassword,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	e := errCode(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "username")
}

func TestAPI_TokenVencidoEs401(t *testing.T) {
	f := newAPIFixture(t, 0)
	expired := bearer(t, f.users[entity.RoleVendedor], -time.Second)

	status, body := f.do(t, http.MethodGet, "/api/pedidos", expired, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", errCode(t, body).Code)
}

func TestAPI_UsuarioDesactivadoEs401Inactivo(t *testing.T) {
	f := newAPIFixture(t, 0)
	token := f.tokens[entity.RoleRepartidor]

	status, _ := f.do(t, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INACTIVE_USER", errCode(t, body).Code)
}

func TestAPI_LimiteDeLoginPorIP(t *testing.T) {
	f := newAPIFixture(t, 2)
	creds := map[string]any{"email": "vendedor@distribucion.test", "password": testPassword}

	for i := 0; i < 2; i++ {
		status, body := f.do(t, http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, fiber.StatusOK, status, string(body))
	}
	status, body := f.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errCode(t, body).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Política de rutas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PoliticaDeRutas(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, productID := f.seedCatalog(t, 50)

	status, body := f.do(t, http.MethodPost, "/api/pedidos", f.tokens[entity.RoleVendedor], orderBody(clientID, productID, 1))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &created))

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		body   any
		want   int
	}{
		{"vendedor no cambia estado", entity.RoleVendedor, http.MethodPut, "/api/pedidos/" + created.ID, map[string]any{"status": "delivered"}, fiber.StatusForbidden},
		{"administrador cambia estado", entity.RoleAdministrador, http.MethodPut, "/api/pedidos/" + created.ID, map[string]any{"status": "cancelled"}, fiber.StatusOK},
		{"vendedor no crea productos", entity.RoleVendedor, http.MethodPost, "/api/productos", map[string]any{"name": "X", "sku": "X-1", "price": "1"}, fiber.StatusForbidden},
		{"vendedor lee productos", entity.RoleVendedor, http.MethodGet, "/api/productos", nil, fiber.StatusOK},
		{"repartidor no crea rutas", entity.RoleRepartidor, http.MethodPost, "/api/rutas", map[string]any{"name": "Norte", "type": "delivery"}, fiber.StatusForbidden},
		{"vendedor no administra usuarios", entity.RoleVendedor, http.MethodGet, "/api/admin/users", nil, fiber.StatusForbidden},
		{"gerente administra usuarios", entity.RoleGerente, http.MethodGet, "/api/admin/users", nil, fiber.StatusOK},
		{"gerente no lista roles", entity.RoleGerente, http.MethodGet, "/api/roles", nil, fiber.StatusForbidden},
		{"administrador lista roles", entity.RoleAdministrador, http.MethodGet, "/api/roles", nil, fiber.StatusOK},
		{"vendedor ve el dashboard", entity.RoleVendedor, http.MethodGet, "/api/dashboard", nil, fiber.StatusOK},
		{"sin token no registra entregas", "", http.MethodPost, "/api/entregas", map[string]any{"order_id": created.ID}, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := f.do(t, tc.method, tc.path, f.tokens[tc.role], tc.body)
			assert.Equal(t, tc.want, status, string(body))
		})
	}
}

func TestAPI_403NombraElPermiso(t *testing.T) {
	f := newAPIFixture(t, 0)

	status, body := f.do(t, http.MethodDelete, "/api/pedidos/cualquiera", f.tokens[entity.RoleVendedor], nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	e := errCode(t, body)
	assert.Equal(t, "FORBIDDEN", e.Code)
	assert.Equal(t, "se requiere el permiso 'orders.manage'", e.Message)
}

func TestAPI_FalloAlResolverRolEs500(t *testing.T) {
	f := newAPIFixture(t, 0)
	f.store.FailOn("roles.GetByID", assert.AnError)

	status, body := f.do(t, http.MethodPost, "/api/productos", f.tokens[entity.RoleAdministrador], map[string]any{
		"name": "X", "sku": "X-1", "price": "1",
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	e := errCode(t, body)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.Equal(t, "error interno", e.Message)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PedidoDescuentaStockYRechazaExceso(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, productID := f.seedCatalog(t, 5)
	seller := f.tokens[entity.RoleVendedor]

	status, body := f.do(t, http.MethodPost, "/api/pedidos", seller, orderBody(clientID, productID, 3))
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, decimal.RequireFromString("30").Equal(created.Total), created.Total.String())
	assert.Equal(t, entity.OrderPendingDelivery, created.Status)
	assert.Equal(t, f.users[entity.RoleVendedor].ID, created.SellerID)

	status, body = f.do(t, http.MethodPost, "/api/pedidos", seller, orderBody(clientID, productID, 3))
	assert.Equal(t, fiber.StatusConflict, status)
	e := errCode(t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Contains(t, e.Message, productID)

	status, body = f.do(t, http.MethodGet, "/api/productos/"+productID, seller, nil)
	require.Equal(t, fiber.StatusOK, status)
	var product dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &product))
	assert.Equal(t, 2, product.Stock)

	// borrar un pedido pendiente devuelve el stock
	status, _ = f.do(t, http.MethodDelete, "/api/pedidos/"+created.ID, f.tokens[entity.RoleAdministrador], nil)
	require.Equal(t, fiber.StatusOK, status)
	_, body = f.do(t, http.MethodGet, "/api/productos/"+productID, seller, nil)
	require.NoError(t, json.Unmarshal(body, &product))
	assert.Equal(t, 5, product.Stock)
}

func TestAPI_PedidoConProductoInexistente(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, productID := f.seedCatalog(t, 5)

	body := map[string]any{
		"client_id": clientID,
		"lines": []map[string]any{
			{"product_id": productID, "quantity": 1, "unit_price": "10"},
			{"product_id": "no-existe", "quantity": 1, "unit_price": "10"},
		},
	}
	status, raw := f.do(t, http.MethodPost, "/api/pedidos", f.tokens[entity.RoleVendedor], body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	e := errCode(t, raw)
	assert.Equal(t, "PRODUCT_NOT_FOUND", e.Code)
	assert.Contains(t, e.Message, "no-existe")

	// la primera línea no descontó nada
	_, raw = f.do(t, http.MethodGet, "/api/productos/"+productID, f.tokens[entity.RoleVendedor], nil)
	var product dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &product))
	assert.Equal(t, 5, product.Stock)
}

func TestAPI_PedidoSinLineasEsValidacion(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, _ := f.seedCatalog(t, 5)

	status, body := f.do(t, http.MethodPost, "/api/pedidos", f.tokens[entity.RoleVendedor], map[string]any{
		"client_id": clientID, "lines": []any{},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, body).Code)
}

func TestAPI_ComprobantePDF(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, productID := f.seedCatalog(t, 5)
	seller := f.tokens[entity.RoleVendedor]

	_, body := f.do(t, http.MethodPost, "/api/pedidos", seller, orderBody(clientID, productID, 1))
	var created dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &created))

	req := httptest.NewRequest(http.MethodGet, "/api/pedidos/"+created.ID+"/pdf", nil)
	req.Header.Set("Authorization", seller)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	status, _ := f.do(t, http.MethodGet, "/api/pedidos/no-existe/pdf", seller, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entregas, rutas y administración
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_EntregaCierraPedido(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, productID := f.seedCatalog(t, 5)
	courier := f.tokens[entity.RoleRepartidor]

	_, body := f.do(t, http.MethodPost, "/api/pedidos", f.tokens[entity.RoleVendedor], orderBody(clientID, productID, 2))
	var created dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, body := f.do(t, http.MethodPost, "/api/entregas", courier, map[string]any{"order_id": created.ID})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var delivery dto.DeliveryResponse
	require.NoError(t, json.Unmarshal(body, &delivery))

	status, body = f.do(t, http.MethodPost, "/api/entregas/"+delivery.ID+"/pagos", courier, map[string]any{
		"amount": "20.00", "method": "cash",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = f.do(t, http.MethodPut, "/api/entregas/"+delivery.ID, courier, map[string]any{"status": "delivered"})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = f.do(t, http.MethodPut, "/api/entregas/"+delivery.ID, courier, map[string]any{"status": "rejected"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errCode(t, body).Code)

	_, body = f.do(t, http.MethodGet, "/api/pedidos/"+created.ID, courier, nil)
	var got dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, entity.OrderDelivered, got.Status)
}

func TestAPI_RutaConClientesYAsignacion(t *testing.T) {
	f := newAPIFixture(t, 0)
	clientID, _ := f.seedCatalog(t, 1)
	admin := f.tokens[entity.RoleAdministrador]

	status, body := f.do(t, http.MethodPost, "/api/rutas", admin, map[string]any{
		"name": "Norte", "type": "delivery",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var r dto.RouteResponse
	require.NoError(t, json.Unmarshal(body, &r))

	status, body = f.do(t, http.MethodPost, "/api/rutas/"+r.ID+"/clientes/"+clientID, admin, map[string]any{"order_index": 1})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, _ = f.do(t, http.MethodPost, "/api/rutas/"+r.ID+"/clientes/"+clientID, admin, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	courierID := f.users[entity.RoleRepartidor].ID
	status, body = f.do(t, http.MethodPost, "/api/rutas/"+r.ID+"/asignar/"+courierID, admin, map[string]any{"date": "2026-03-02"})
	require.Equal(t, fiber.StatusCreated, status, string(body))

	status, body = f.do(t, http.MethodPost, "/api/rutas/"+r.ID+"/asignar/"+courierID, admin, map[string]any{"date": "02/03/2026"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, body).Code)

	status, body = f.do(t, http.MethodGet, "/api/rutas/"+r.ID+"/optimizada", f.tokens[entity.RoleRepartidor], nil)
	require.Equal(t, fiber.StatusOK, status)
	var stops []dto.RouteStopResponse
	require.NoError(t, json.Unmarshal(body, &stops))
	require.Len(t, stops, 1)
	assert.Equal(t, clientID, stops[0].ClientID)
}

func TestAPI_AdminNoCambiaSuPropioRol(t *testing.T) {
	f := newAPIFixture(t, 0)
	ctx := context.Background()
	gerente := f.users[entity.RoleGerente]
	vendedorRole, err := f.store.Roles().GetByName(ctx, entity.RoleVendedor)
	require.NoError(t, err)

	status, body := f.do(t, http.MethodPut, "/api/admin/users/"+gerente.ID+"/role", f.tokens[entity.RoleGerente], map[string]any{
		"role_id": vendedorRole.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errCode(t, body).Code)

	status, body = f.do(t, http.MethodPut, "/api/admin/users/"+f.users[entity.RoleRepartidor].ID+"/role", f.tokens[entity.RoleGerente], map[string]any{
		"role_id": vendedorRole.ID,
	})
	require.Equal(t, fiber.StatusOK, status, string(body))
	var out dto.UserResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, entity.RoleVendedor, out.RoleName)
}
