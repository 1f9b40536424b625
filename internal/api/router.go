package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stonemarket/storefront/internal/api/handler"
	"github.com/stonemarket/storefront/internal/api/middleware"
	"github.com/stonemarket/storefront/internal/core/ports"
)

// Deps is everything the HTTP layer needs from the core.
type Deps struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Carts   ports.CartService
	Cookies *middleware.SessionCookies
	Log     zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means
	// the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	reg, gatherer := deps.Registerer, deps.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Probes and metrics (no session) ---
	health := handler.NewHealthHandler(deps.Catalog)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	// --- API (every request carries a session) ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	cartHandler := handler.NewCartHandler(deps.Carts)
	checkoutHandler := handler.NewCheckoutHandler(deps.Carts)

	apiGroup := e.Group("/api", middleware.Session(deps.Auth, deps.Cookies, deps.Log))
	apiGroup.POST("/signup", authHandler.Signup)
	apiGroup.POST("/login", authHandler.Login)
	apiGroup.POST("/logout", authHandler.Logout)
	apiGroup.GET("/check-in", authHandler.CheckIn)
	apiGroup.GET("/listings", catalogHandler.List)

	requireIdentity := middleware.RequireIdentity()
	apiGroup.GET("/cart", cartHandler.View, requireIdentity)
	apiGroup.POST("/cart/:listing_id", cartHandler.Add, requireIdentity)
	apiGroup.DELETE("/cart/:listing_id", cartHandler.Remove, requireIdentity)
	apiGroup.GET("/checkout", checkoutHandler.Summary, requireIdentity)
	apiGroup.POST("/checkout", checkoutHandler.Place, requireIdentity)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error()
			}
			event.
				Err(v.Error).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
