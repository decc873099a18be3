package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/harvestlink/marketplace-api/docs"
	"github.com/harvestlink/marketplace-api/internal/api/handler"
	"github.com/harvestlink/marketplace-api/internal/api/middleware"
	"github.com/harvestlink/marketplace-api/internal/core/domain"
	"github.com/harvestlink/marketplace-api/internal/core/ports"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Identity ports.IdentityService
	Catalog  ports.CatalogService
	Orders   ports.OrderService
	Trends   ports.TrendsService

	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.HealthCheck

	Log zerolog.Logger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Identity)
	listingHandler := handler.NewListingHandler(deps.Catalog)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	trendsHandler := handler.NewTrendsHandler(deps.Trends)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	requireAuth := middleware.Auth(deps.Identity)

	// --- Operational routes ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// --- Catalog routes (browsing is public) ---
	v1.GET("/listings", listingHandler.List)
	v1.GET("/listings/:id", listingHandler.Get)
	v1.GET("/listings/:id/availability", listingHandler.Availability)
	v1.POST("/listings", listingHandler.Create, requireAuth, middleware.RBAC(domain.RoleProducer))

	// --- Order routes ---
	orders := v1.Group("/orders", requireAuth)
	orders.POST("", orderHandler.Place, middleware.RBAC(domain.RoleConsumer))
	orders.GET("", orderHandler.List)

	v1.GET("/trends", trendsHandler.Get)

	return e
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
