package ports

import (
	"context"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

// SubmitCaseInput carries everything needed to open a new case. Documents are
// already stored on disk by the transport layer; only their references are
// persisted here.
type SubmitCaseInput struct {
	OwnerID           string
	Title             string
	Description       string
	ExistingDiagnosis string
	Questions         string
	PreferredLanguage string
	Documents         []domain.Document
}

// CaseService governs the case lifecycle and its read authorization.
type CaseService interface {
	Submit(ctx context.Context, input SubmitCaseInput) (*domain.Case, error)
	// Get enforces the read rule: owner, assigned doctor, any doctor while
	// the case is unclaimed, or admin.
	Get(ctx context.Context, caseID string, ident domain.Identity) (*domain.Case, error)
	// ListForOwner returns all cases submitted by the given patient.
	ListForOwner(ctx context.Context, userID string) ([]domain.Case, error)
	// ListSubmitted returns unclaimed cases for doctor triage.
	ListSubmitted(ctx context.Context) ([]domain.Case, error)
	// ListForDoctor returns cases assigned to the given doctor.
	ListForDoctor(ctx context.Context, doctorID string) ([]domain.Case, error)
	// Accept claims a submitted case for a doctor. Fails with
	// ErrInvalidTransition when the case is no longer in the submitted state,
	// including when another doctor claimed it first.
	Accept(ctx context.Context, caseID, doctorID string) (*domain.Case, error)
	// SubmitOpinion records the assigned doctor's opinion and completes the
	// case. Fails with ErrForbidden when the caller is not the assigned
	// doctor, ErrInvalidTransition when the case is not under review.
	SubmitOpinion(ctx context.Context, caseID, doctorID, opinion string) (*domain.Case, error)
	// Events returns the audit trail for a case, oldest first.
	Events(ctx context.Context, caseID string) ([]domain.CaseEvent, error)
}

// EventPublisher is the sink for case lifecycle events. Implementations may
// process asynchronously; publication must never block the request path
// beyond queue capacity.
type EventPublisher interface {
	Publish(event domain.CaseEvent)
}

// EventRecorder persists a single case lifecycle event to the audit trail.
// Called by the dispatcher workers, off the request path.
type EventRecorder interface {
	Record(ctx context.Context, event domain.CaseEvent) error
}
