package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/medbuddy/second-opinion-api/docs"
	"github.com/medbuddy/second-opinion-api/internal/api/handler"
	"github.com/medbuddy/second-opinion-api/internal/api/middleware"
	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// RouterConfig carries everything the router needs; services and
// infrastructure are composed in main and injected here.
type RouterConfig struct {
	JWTSecret      string
	UploadDir      string
	AuthService    ports.AuthService
	CaseService    ports.CaseService
	MessageService ports.MessageService
	AdminService   ports.AdminService
	Documents      handler.DocumentSaver
	RateLimiter    middleware.Limiter
	HealthChecks   map[string]handler.CheckFunc
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("secondopinion"))
	if cfg.RateLimiter != nil {
		e.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Logger))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	caseHandler := handler.NewCaseHandler(cfg.CaseService, cfg.Documents, cfg.Logger)
	doctorHandler := handler.NewDoctorHandler(cfg.CaseService)
	messageHandler := handler.NewMessageHandler(cfg.MessageService)
	adminHandler := handler.NewAdminHandler(cfg.AdminService, cfg.AuthService, cfg.CaseService)
	healthHandler := handler.NewHealthHandler(cfg.HealthChecks)

	authRequired := middleware.Auth(cfg.JWTSecret)

	// --- Operational endpoints (no auth) ---
	e.GET("/health", healthHandler.Live)
	e.GET("/health/ready", healthHandler.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")

	// --- Public routes ---
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	// --- Patient routes ---
	cases := api.Group("/cases", authRequired)
	cases.POST("", caseHandler.Submit, middleware.RBAC(domain.RoleUser))
	cases.GET("", caseHandler.List, middleware.RBAC(domain.RoleUser))
	cases.GET("/:id", caseHandler.Get)
	cases.GET("/:id/messages", messageHandler.List)
	cases.POST("/:id/messages", messageHandler.Post)

	// --- Doctor routes ---
	doctor := api.Group("/doctor", authRequired, middleware.RBAC(domain.RoleDoctor))
	doctor.GET("/cases", doctorHandler.AvailableCases)
	doctor.GET("/my-cases", doctorHandler.MyCases)
	doctor.POST("/cases/:id/accept", doctorHandler.Accept)
	doctor.POST("/cases/:id/opinion", doctorHandler.SubmitOpinion)

	// --- Admin routes ---
	admin := api.Group("/admin", authRequired, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/reset-password", adminHandler.ResetPassword)
	admin.GET("/cases/:id/events", adminHandler.CaseEvents)

	return e
}
