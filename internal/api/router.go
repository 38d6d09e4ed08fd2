package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/access-control/docs"
	"github.com/99minutos/access-control/internal/api/handler"
	"github.com/99minutos/access-control/internal/api/middleware"
	"github.com/99minutos/access-control/internal/core/ports"
)

// Dependencies holds everything NewRouter needs to build the HTTP surface.
type Dependencies struct {
	Auth        ports.AuthService
	Accounts    ports.AccountService
	Pingers     []ports.Pinger
	Log         zerolog.Logger
	APIPrefix   string
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Log)
	accountHandler := handler.NewAccountHandler(deps.Accounts)

	api := e.Group(strings.TrimSuffix(deps.APIPrefix, "/"))

	// --- Auth routes ---
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	// --- Account registry (admin session required) ---
	users := api.Group("/users", middleware.AdminOnly(deps.Auth))
	users.GET("", accountHandler.List)
	users.POST("", accountHandler.Add)
	users.PUT("/:username", accountHandler.Update)
	users.DELETE("/:username", accountHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Pingers...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are the stores up?

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
