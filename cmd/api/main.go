// @title        Second Opinion API
// @version      1.0
// @description  Medical second opinion platform: case submission, doctor review, and messaging.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medbuddy/second-opinion-api/internal/api"
	"github.com/medbuddy/second-opinion-api/internal/api/handler"
	"github.com/medbuddy/second-opinion-api/internal/api/middleware"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
	"github.com/medbuddy/second-opinion-api/internal/core/service"
	mongostore "github.com/medbuddy/second-opinion-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/medbuddy/second-opinion-api/internal/infrastructure/db/redis"
	sqlitestore "github.com/medbuddy/second-opinion-api/internal/infrastructure/db/sqlite"
	"github.com/medbuddy/second-opinion-api/internal/infrastructure/queue"
	"github.com/medbuddy/second-opinion-api/internal/infrastructure/storage"
	"github.com/medbuddy/second-opinion-api/internal/pkg/config"
	"github.com/medbuddy/second-opinion-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Record store ---
	var (
		store  ports.RecordStore
		pinger func(ctx context.Context) error
	)
	switch cfg.StoreDriver {
	case "sqlite":
		st, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLite.Path).Msg("opening sqlite store")
		}
		store, pinger = st, st.Ping
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to mongodb")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		}()

		st := mongostore.NewRecordStore(db)
		if err := st.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("creating mongodb indexes")
		}
		store, pinger = st, st.Ping
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER, expected mongo or sqlite")
	}

	// --- Redis (rate limiting) ---
	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	var rateLimiter middleware.Limiter
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
		rateLimiter = redisinfra.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// --- Document storage ---
	documents, err := storage.NewDocumentStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("preparing upload directory")
	}

	// --- Audit trail ---
	auditLog := log.With().Str("component", "audit").Logger()
	dispatcher := queue.NewDispatcher(0, service.NewAuditService(store, auditLog), auditLog)
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL, log.With().Str("component", "auth").Logger())
	caseService := service.NewCaseService(store, dispatcher, log.With().Str("component", "cases").Logger())
	messageService := service.NewMessageService(store, log.With().Str("component", "messages").Logger())
	adminService := service.NewAdminService(store, log.With().Str("component", "admin").Logger())

	healthChecks := map[string]handler.CheckFunc{"store": pinger}
	if rdb != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		UploadDir:      cfg.UploadDir,
		AuthService:    authService,
		CaseService:    caseService,
		MessageService: messageService,
		AdminService:   adminService,
		Documents:      documents,
		RateLimiter:    rateLimiter,
		HealthChecks:   healthChecks,
		Logger:         log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
