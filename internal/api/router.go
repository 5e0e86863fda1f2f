package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/jobportal/account-service/docs"
	"github.com/jobportal/account-service/internal/api/handler"
	"github.com/jobportal/account-service/internal/api/middleware"
	"github.com/jobportal/account-service/internal/core/domain"
	"github.com/jobportal/account-service/internal/core/ports"
	"github.com/jobportal/account-service/internal/infrastructure/http/handlers"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	AuthService    ports.AuthService
	ProfileService ports.ProfileService
	Verifier       ports.TokenVerifier
	Cookie         handler.CookieConfig
	AllowedOrigins []string
	BodyLimit      string
	Dependencies   map[string]handlers.Pinger
	Logger         zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "jobportal",
		Registerer: cfg.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(cfg.BodyLimit))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Cookie)
	profileHandler := handler.NewProfileHandler(cfg.ProfileService)
	session := middleware.Session(cfg.Verifier)

	// --- Account routes ---
	user := e.Group("/api/v1/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/logout", authHandler.Logout)
	user.GET("/logout", authHandler.Logout)

	user.POST("/profile/update", profileHandler.UpdateProfile, session)
	user.GET("/me", profileHandler.Me, session)
	user.GET("/recruiter/session", profileHandler.RecruiterSession, session, middleware.RBAC(domain.RoleRecruiter))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(cfg.Dependencies)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: cfg.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
