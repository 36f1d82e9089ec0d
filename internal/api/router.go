package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/agriconnect/user-service/docs"
	"github.com/agriconnect/user-service/internal/api/handler"
	"github.com/agriconnect/user-service/internal/api/middleware"
	"github.com/agriconnect/user-service/internal/core/ports"
)

// Dependencies carries everything the HTTP layer needs from main.
type Dependencies struct {
	Accounts ports.AccountService
	Log      zerolog.Logger
	// Checks are run by the readiness check.
	Checks []handler.DependencyCheck
	// Registry receives the HTTP metrics. Nil means the process-wide
	// default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: []string{"*"}}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "users",
		Registerer: registerer,
	}))

	// --- Account routes ---
	accounts := handler.NewAccountHandler(deps.Accounts)

	users := e.Group("/api/users")
	users.POST("/register", accounts.Register)
	users.GET("/health", accounts.Health)
	users.GET("/email/:email", accounts.GetByEmail)
	users.GET("/type/:userType", accounts.ListByType)
	users.GET("/location/:location/type/:userType", accounts.ListByLocationAndType)
	users.GET("/:id", accounts.GetByID)
	users.PUT("/:id/profile", accounts.UpdateProfile)
	users.DELETE("/:id", accounts.Deactivate)

	// --- Health checks, metrics and docs ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
