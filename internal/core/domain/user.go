package domain

import (
	"errors"
	"time"
)

const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateEmail = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models a registered actor: patient, doctor, or admin.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Country      string    `json:"country,omitempty"`
	Language     string    `json:"language,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicProfile is the projection of a user safe to return to clients.
// The password hash never leaves the auth component.
type PublicProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// DoctorProfile is the optional specialization record kept for users with the
// doctor role.
type DoctorProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Specialization string    `json:"specialization"`
	License        string    `json:"license"`
	Availability   string    `json:"availability"`
	CreatedAt      time.Time `json:"created_at"`
}

// Identity is the verified caller identity extracted from a credential.
type Identity struct {
	ID    string
	Email string
	Role  string
}
