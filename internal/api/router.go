package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userdeck/user-directory-api/docs"
	"github.com/userdeck/user-directory-api/internal/api/handler"
	"github.com/userdeck/user-directory-api/internal/api/middleware"
	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/service"
	"github.com/userdeck/user-directory-api/internal/infrastructure/config"
	"github.com/userdeck/user-directory-api/internal/infrastructure/db/postgres"
	"github.com/userdeck/user-directory-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *sql.DB, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("user_directory"))

	// --- Dependencies ---
	repo := postgres.NewUserRepository(db)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	authHandler := handler.NewAuthHandler(service.NewAuthService(repo, tokens, hasher))
	userHandler := handler.NewUserHandler(service.NewUserService(repo, hasher))

	requireAuth := middleware.Auth(tokens)
	selfOrAdmin := middleware.RequireSelfOrRole(domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- User directory (every route behind the bearer gate) ---
	users := e.Group("/users", requireAuth)
	users.GET("", userHandler.List, selfOrAdmin)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:id", userHandler.Get, selfOrAdmin)
	users.PATCH("/:id", userHandler.Update, selfOrAdmin)
	users.DELETE("/:id", userHandler.Delete, selfOrAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – is the database up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
