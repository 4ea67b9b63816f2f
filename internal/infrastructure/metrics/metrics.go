// Package metrics colectores Prometheus de la API y middleware Fiber que los alimenta.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/distribucion-api/internal/application/order"
)

var _ order.Observer = (*Metrics)(nil)

// Metrics registro propio con los colectores HTTP, de pedidos y de autorización.
// Un *Metrics nil es válido: todos los métodos son no-op.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersCreated   prometheus.Counter
	orderRejections *prometheus.CounterVec
	authzDenials    *prometheus.CounterVec
}

// New inicializa el registro y los colectores.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distribucion_http_requests_total",
			Help: "Peticiones HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "distribucion_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por método y ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distribucion_orders_created_total",
			Help: "Pedidos creados con éxito.",
		}),
		orderRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distribucion_order_rejections_total",
			Help: "Pedidos rechazados por motivo.",
		}, []string{"reason"}),
		authzDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distribucion_authz_denials_total",
			Help: "Peticiones denegadas por el guard de autorización.",
		}, []string{"gate"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.ordersCreated, m.orderRejections, m.authzDenials,
	)
	return m
}

// Handler endpoint GET /metrics.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) }
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware registra conteo y duración de cada petición. La ruta es el patrón
// registrado (/api/pedidos/:id), no la URL concreta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// OrderCreated implementa order.Observer.
func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderRejected implementa order.Observer.
func (m *Metrics) OrderRejected(reason string) {
	if m == nil {
		return
	}
	m.orderRejections.WithLabelValues(reason).Inc()
}

// AuthzDenied cuenta una denegación en el gate indicado (active_user, role, permission).
func (m *Metrics) AuthzDenied(gate string) {
	if m == nil {
		return
	}
	m.authzDenials.WithLabelValues(gate).Inc()
}

// Registerer expone el registro para colectores adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
