package ports

import (
	"context"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

// MessageService manages the append-only per-case conversation.
type MessageService interface {
	// Post appends a message. The sender type is derived from the verified
	// role of the caller, never from the request body. Only the case owner
	// and the assigned doctor may post.
	Post(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error)
	// List returns all messages for a case in timestamp order. Same read
	// authorization as case reads.
	List(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error)
}
