package ports

import (
	"context"
)

// Stats is the aggregate view returned to admins. Recomputed on every call by
// scanning users and cases.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalDoctors   int `json:"total_doctors"`
	TotalCases     int `json:"total_cases"`
	ActiveCases    int `json:"active_cases"`
	CompletedCases int `json:"completed_cases"`
}

// UserSummary is the sanitized user view for the admin listing.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
	CreatedAt string `json:"created_at"`
}

// AdminService provides read-only reporting over users and cases.
type AdminService interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
}
