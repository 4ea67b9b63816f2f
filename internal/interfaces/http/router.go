package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/jhoicas/distribucion-api/internal/application/analytics"
	"github.com/jhoicas/distribucion-api/internal/application/auth"
	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/order"
	"github.com/jhoicas/distribucion-api/internal/application/route"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	RoleUC      *usecase.RoleUseCase
	ProductUC   *usecase.ProductUseCase
	ClientUC    *usecase.ClientUseCase
	OrderUC     *order.OrderUseCase
	RouteUC     *route.RouteUseCase
	DeliveryUC  *usecase.DeliveryUseCase
	DashboardUC *appanalytics.DashboardUseCase

	Resolver RoleResolver
	Denials  DenialRecorder
	Log      *logger.Logger

	// LoginRateLimit peticiones por minuto e IP en /api/auth/login; 0 desactiva el límite.
	LoginRateLimit int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	guard := NewGuard(deps.AuthUC, deps.Resolver, deps.Denials, log)
	api := app.Group("/api")

	// Auth (público salvo refresh)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", loginLimiter(deps.LoginRateLimit), authHandler.Login)
	authGroup.Post("/refresh-token", guard.Authenticate(), authHandler.Refresh)

	// Todo lo demás requiere usuario activo
	protected := api.Group("/", guard.Authenticate())
	productsManage := guard.RequirePermission(entity.PermProductsManage)

	// Users
	userHandler := NewUserHandler(deps.UserUC, log)
	users := protected.Group("/users")
	users.Get("/me", userHandler.Me)
	users.Put("/me", userHandler.UpdateMe)
	users.Delete("/me", userHandler.DeactivateMe)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	// Admin (users.manage)
	adminHandler := NewAdminHandler(deps.UserUC, deps.RoleUC, log)
	admin := protected.Group("/admin", guard.RequirePermission(entity.PermUsersManage))
	admin.Get("/users", adminHandler.Users)
	admin.Get("/users-with-permissions", adminHandler.UsersWithPermissions)
	admin.Get("/roles", adminHandler.Roles)
	admin.Put("/users/:id/role", adminHandler.ChangeRole)

	// Roles y permisos (rol administrador)
	roleHandler := NewRoleHandler(deps.RoleUC, log)
	roles := protected.Group("/roles", guard.RequireRole(entity.RoleAdministrador))
	roles.Get("/", roleHandler.List)
	roles.Post("/", roleHandler.Create)
	roles.Post("/:id/permisos", roleHandler.AssignPermission)
	roles.Delete("/:id/permisos/:permisoId", roleHandler.RevokePermission)
	perms := protected.Group("/permisos", guard.RequireRole(entity.RoleAdministrador))
	perms.Get("/", roleHandler.ListPermissions)
	perms.Post("/", roleHandler.CreatePermission)

	// Productos
	productHandler := NewProductHandler(deps.ProductUC, log)
	products := protected.Group("/productos")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", productsManage, productHandler.Create)
	products.Put("/:id", productsManage, productHandler.Update)
	products.Delete("/:id", productsManage, productHandler.Delete)

	// Clientes
	clientHandler := NewClientHandler(deps.ClientUC, log)
	clients := protected.Group("/clientes")
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Post("/", productsManage, clientHandler.Create)
	clients.Put("/:id", productsManage, clientHandler.Update)
	clients.Delete("/:id", productsManage, clientHandler.Delete)

	// Pedidos: crear y consultar con usuario activo; cambiar estado y borrar con orders.manage
	orderHandler := NewOrderHandler(deps.OrderUC, log)
	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC, log)
	orders := protected.Group("/pedidos")
	orders.Get("/", orderHandler.List)
	orders.Get("/mios", orderHandler.Mine)
	orders.Get("/cliente/:clienteId", orderHandler.ListByClient)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/pdf", orderHandler.Receipt)
	orders.Get("/:id/entregas", deliveryHandler.ListByOrder)
	orders.Put("/:id", guard.RequirePermission(entity.PermOrdersManage), orderHandler.UpdateStatus)
	orders.Delete("/:id", guard.RequirePermission(entity.PermOrdersManage), orderHandler.Delete)

	// Entregas y cobros
	ordersUpdate := guard.RequirePermission(entity.PermOrdersUpdate)
	deliveries := protected.Group("/entregas")
	deliveries.Post("/", ordersUpdate, deliveryHandler.Create)
	deliveries.Get("/:id", deliveryHandler.GetByID)
	deliveries.Put("/:id", ordersUpdate, deliveryHandler.Resolve)
	deliveries.Post("/:id/pagos", ordersUpdate, deliveryHandler.AddPayment)

	// Rutas
	routeHandler := NewRouteHandler(deps.RouteUC, log)
	routes := protected.Group("/rutas")
	routes.Get("/", routeHandler.List)
	routes.Get("/activas", routeHandler.ListActive)
	routes.Get("/:id", routeHandler.GetByID)
	routes.Get("/:id/optimizada", routeHandler.Optimized)
	routes.Post("/", productsManage, routeHandler.Create)
	routes.Put("/asignaciones/:asignacionId", productsManage, routeHandler.UpdateAssignment)
	routes.Delete("/asignaciones/:asignacionId", productsManage, routeHandler.Unassign)
	routes.Put("/:id", productsManage, routeHandler.Update)
	routes.Delete("/:id", productsManage, routeHandler.Delete)
	routes.Post("/:id/clientes/:clienteId", productsManage, routeHandler.AddClient)
	routes.Delete("/:id/clientes/:clienteId", productsManage, routeHandler.RemoveClient)
	routes.Post("/:id/asignar/:usuarioId", productsManage, routeHandler.Assign)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	dashboard := protected.Group("/dashboard")
	dashboard.Get("/", dashboardHandler.Get)
	dashboard.Get("/resumen", dashboardHandler.Summary)
	dashboard.Get("/metricas-ventas", dashboardHandler.SalesMetrics)
	dashboard.Get("/productos-populares", dashboardHandler.PopularProducts)
	dashboard.Get("/pedidos-pendientes", dashboardHandler.PendingOrders)
	dashboard.Get("/rutas-activas", dashboardHandler.ActiveRoutes)
	dashboard.Get("/ventas-mensuales", dashboardHandler.MonthlySales)
}

// loginLimiter limita los intentos de login por IP.
func loginLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiados intentos, reintente en un minuto"})
		},
	})
}
