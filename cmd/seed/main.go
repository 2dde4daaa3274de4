// Command seed populates the record store with demo accounts and a sample
// case for local development. It goes through the same services as the API so
// passwords are hashed and audit events recorded exactly as in production.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
	"github.com/medbuddy/second-opinion-api/internal/core/service"
	mongostore "github.com/medbuddy/second-opinion-api/internal/infrastructure/db/mongo"
	sqlitestore "github.com/medbuddy/second-opinion-api/internal/infrastructure/db/sqlite"
	"github.com/medbuddy/second-opinion-api/internal/pkg/config"
	"github.com/medbuddy/second-opinion-api/pkg/logger"
)

type noopPublisher struct{}

func (noopPublisher) Publish(domain.CaseEvent) {}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store ports.RecordStore
	switch cfg.StoreDriver {
	case "sqlite":
		st, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("opening sqlite store")
		}
		store = st
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to mongodb")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		store = mongostore.NewRecordStore(db)
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	}

	authService := service.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL, log)
	caseService := service.NewCaseService(store, noopPublisher{}, log)

	accounts := []ports.RegisterInput{
		{
			Name:     "Demo Patient",
			Email:    "patient@example.com",
			Password: "password123",
			Role:     domain.RoleUser,
			Country:  "DE",
			Language: "en",
		},
		{
			Name:           "Dr. Demo Doctor",
			Email:          "doctor@example.com",
			Password:       "password123",
			Role:           domain.RoleDoctor,
			Country:        "US",
			Language:       "en",
			Specialization: "Oncology",
			License:        "MD-12345",
		},
		{
			Name:     "Demo Admin",
			Email:    "admin@example.com",
			Password: "password123",
			Role:     domain.RoleAdmin,
		},
	}

	var patientID string
	for _, acc := range accounts {
		result, err := authService.Register(ctx, acc)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				log.Info().Str("email", acc.Email).Msg("account already seeded, skipping")
				continue
			}
			log.Fatal().Err(err).Str("email", acc.Email).Msg("seeding account")
		}
		if acc.Role == domain.RoleUser {
			patientID = result.User.ID
		}
		log.Info().Str("email", acc.Email).Str("role", acc.Role).Msg("account created")
	}

	if patientID != "" {
		caze, err := caseService.Submit(ctx, ports.SubmitCaseInput{
			OwnerID:           patientID,
			Title:             "Persistent lower back pain",
			Description:       "Six months of lower back pain not responding to physiotherapy. MRI available.",
			ExistingDiagnosis: "Lumbar disc herniation L4-L5",
			Questions:         "Is surgery necessary, or are there conservative alternatives?",
			PreferredLanguage: "en",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("seeding sample case")
		}
		log.Info().Str("case_id", caze.ID).Msg("sample case created")
	}

	log.Info().Msg("seed complete")
}
