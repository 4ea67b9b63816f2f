// Package app arma el grafo de dependencias (persistencia, caché, métricas y casos de uso)
// compartido por el servidor HTTP y la CLI de administración.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appanalytics "github.com/jhoicas/distribucion-api/internal/application/analytics"
	"github.com/jhoicas/distribucion-api/internal/application/auth"
	"github.com/jhoicas/distribucion-api/internal/application/authz"
	"github.com/jhoicas/distribucion-api/internal/application/bootstrap"
	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/application/route"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/cache"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/memory"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/metrics"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/postgres"
	apphttp "github.com/jhoicas/distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/distribucion-api/pkg/config"
	"github.com/jhoicas/distribucion-api/pkg/logger"
	"github.com/jhoicas/distribucion-api/pkg/password"
)

// TxRunner las unidades transaccionales que usan los casos de uso.
type TxRunner interface {
	order.TxRunner
	route.TxRunner
	usecase.RoleTxRunner
	usecase.DeliveryTxRunner
	usecase.ProductTxRunner
}

// Repositories repositorios de un backend concreto.
type Repositories struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Permissions repository.PermissionRepository
	Products    repository.ProductRepository
	Clients     repository.ClientRepository
	Orders      repository.OrderRepository
	Routes      repository.RouteRepository
	Deliveries  repository.DeliveryRepository
	Analytics   repository.AnalyticsRepository
	Tx          TxRunner
}

// Container dependencias construidas a partir de la configuración.
type Container struct {
	Config  *config.Config
	Log     *logger.Logger
	Policy  password.Policy
	Repos   *Repositories
	Pool    *pgxpool.Pool // nil con APP_STORAGE=memory
	Metrics *metrics.Metrics

	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	RoleUC      *usecase.RoleUseCase
	ProductUC   *usecase.ProductUseCase
	ClientUC    *usecase.ClientUseCase
	OrderUC     *order.OrderUseCase
	RouteUC     *route.RouteUseCase
	DeliveryUC  *usecase.DeliveryUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Resolver    *authz.Resolver

	redis *redis.Client
}

// New abre la persistencia elegida y construye los casos de uso.
// Con APP_STORAGE=memory el catálogo de roles y permisos se siembra al arrancar.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
		Policy: password.Policy{
			MinLength: cfg.Security.PasswordMinLength,
			MaxLength: cfg.Security.PasswordMaxLength,
			Cost:      cfg.Security.BcryptCost,
		},
	}

	switch cfg.App.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		if _, err := bootstrap.Seed(ctx, store); err != nil {
			return nil, fmt.Errorf("seed en memoria: %w", err)
		}
		c.Repos = memoryRepositories(store)
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.Pool = pool
		c.Repos = postgresRepositories(pool)
	}

	var dashCache appanalytics.Cache
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, dashboard sin caché")
		} else {
			c.redis = client
			dashCache = cache.NewRedisCache(client, cfg.App.Name+":")
		}
	}

	r := c.Repos
	c.AuthUC = auth.NewAuthUseCase(r.Users, r.Roles, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL(),
		Issuer: cfg.JWT.Issuer,
	}, c.Policy)
	c.UserUC = usecase.NewUserUseCase(r.Users, r.Roles, c.Policy)
	c.RoleUC = usecase.NewRoleUseCase(r.Tx, r.Roles, r.Permissions)
	c.ProductUC = usecase.NewProductUseCase(r.Tx, r.Products)
	c.ClientUC = usecase.NewClientUseCase(r.Clients)
	c.OrderUC = order.NewOrderUseCase(r.Tx, r.Orders, r.Clients, r.Users, r.Products,
		pdf.NewReceiptGenerator(cfg.App.CompanyName), log).WithObserver(c.Metrics)
	c.RouteUC = route.NewRouteUseCase(r.Tx, r.Routes, r.Clients, r.Users)
	c.DeliveryUC = usecase.NewDeliveryUseCase(r.Tx, r.Deliveries, r.Orders)
	c.DashboardUC = appanalytics.NewDashboardUseCase(r.Analytics, dashCache, cfg.Redis.DashboardTTL, log)
	c.Resolver = authz.NewResolver(r.Roles)
	return c, nil
}

// RouterDeps dependencias del router HTTP.
func (c *Container) RouterDeps() apphttp.RouterDeps {
	return apphttp.RouterDeps{
		AuthUC:         c.AuthUC,
		UserUC:         c.UserUC,
		RoleUC:         c.RoleUC,
		ProductUC:      c.ProductUC,
		ClientUC:       c.ClientUC,
		OrderUC:        c.OrderUC,
		RouteUC:        c.RouteUC,
		DeliveryUC:     c.DeliveryUC,
		DashboardUC:    c.DashboardUC,
		Resolver:       c.Resolver,
		Denials:        c.Metrics,
		Log:            c.Log,
		LoginRateLimit: c.Config.HTTP.LoginRateLimit,
	}
}

// Close libera el pool y el cliente de Redis.
func (c *Container) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

func memoryRepositories(s *memory.Store) *Repositories {
	return &Repositories{
		Users:       s.Users(),
		Roles:       s.Roles(),
		Permissions: s.Permissions(),
		Products:    s.Products(),
		Clients:     s.Clients(),
		Orders:      s.Orders(),
		Routes:      s.Routes(),
		Deliveries:  s.Deliveries(),
		Analytics:   s.Analytics(),
		Tx:          s,
	}
}

func postgresRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       postgres.NewUserRepository(pool),
		Roles:       postgres.NewRoleRepository(pool),
		Permissions: postgres.NewPermissionRepository(pool),
		Products:    postgres.NewProductRepository(pool),
		Clients:     postgres.NewClientRepository(pool),
		Orders:      postgres.NewOrderRepository(pool),
		Routes:      postgres.NewRouteRepository(pool),
		Deliveries:  postgres.NewDeliveryRepository(pool),
		Analytics:   postgres.NewAnalyticsRepository(pool),
		Tx:          postgres.NewTxRunner(pool),
	}
}
