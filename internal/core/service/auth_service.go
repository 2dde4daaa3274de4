package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// AuthService implements registration, login, and admin password resets on
// top of the record store.
type AuthService struct {
	store     ports.RecordStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(store ports.RecordStore, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

func validRole(role string) bool {
	return role == domain.RoleUser || role == domain.RoleDoctor || role == domain.RoleAdmin
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("register: %w", domain.ErrValidation)
	}
	if !validRole(input.Role) {
		return nil, fmt.Errorf("register: unknown role %q: %w", input.Role, domain.ErrValidation)
	}

	// Uniqueness check. Not transactional with the insert; adequate under
	// the low write concurrency this system assumes.
	if _, err := s.store.GetByKey(ctx, ports.CollectionUsers, "email", input.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, ports.ErrRecordNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	rec, err := s.store.Create(ctx, ports.CollectionUsers, ports.Fields{
		"name":     input.Name,
		"email":    input.Email,
		"password": string(hash),
		"role":     input.Role,
		"country":  input.Country,
		"language": input.Language,
		"verified": false,
	})
	if err != nil {
		// The unique email index catches the race the lookup above misses.
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}
	user := userFromRecord(rec)

	if input.Role == domain.RoleDoctor {
		if _, err := s.store.Create(ctx, ports.CollectionDoctors, ports.Fields{
			"userId":         user.ID,
			"specialization": input.Specialization,
			"license":        input.License,
			"availability":   "online",
		}); err != nil {
			// User record already exists; profile can be backfilled later.
			s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to create doctor profile")
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("register: sign token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	rec, err := s.store.GetByKey(ctx, ports.CollectionUsers, "email", email)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}
	user := userFromRecord(rec)

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	return &ports.AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) (domain.PublicProfile, error) {
	if email == "" || newPassword == "" {
		return domain.PublicProfile{}, domain.ErrInvalidCredentials
	}

	rec, err := s.store.GetByKey(ctx, ports.CollectionUsers, "email", email)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.PublicProfile{}, domain.ErrUserNotFound
		}
		return domain.PublicProfile{}, fmt.Errorf("reset password: lookup email: %w", err)
	}
	user := userFromRecord(rec)

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.PublicProfile{}, fmt.Errorf("reset password: hash: %w", err)
	}

	updated, err := s.store.Update(ctx, ports.CollectionUsers, user.ID, ports.Fields{
		"password": string(hash),
	})
	if err != nil {
		return domain.PublicProfile{}, fmt.Errorf("reset password: update: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset by admin")
	return userFromRecord(updated).Public(), nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
