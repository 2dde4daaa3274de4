package ports

import (
	"context"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

// RegisterInput carries the registration form. Specialization and License are
// only meaningful when Role is "doctor".
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	Country        string
	Language       string
	Specialization string
	License        string
}

// AuthResult pairs a signed credential with the public user projection.
type AuthResult struct {
	Token string
	User  domain.PublicProfile
}

// AuthService implements registration, login, and admin password resets.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) (domain.PublicProfile, error)
}
