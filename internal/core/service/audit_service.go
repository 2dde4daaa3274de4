package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// AuditService appends case lifecycle events to the case_events collection.
// Failures here never affect the originating request; the dispatcher logs
// them and moves on.
type auditService struct {
	store  ports.RecordStore
	logger zerolog.Logger
}

// NewAuditService returns an EventRecorder backed by the record store.
func NewAuditService(store ports.RecordStore, logger zerolog.Logger) ports.EventRecorder {
	return &auditService{store: store, logger: logger}
}

func (s *auditService) Record(ctx context.Context, event domain.CaseEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.store.Create(ctx, ports.CollectionCaseEvents, ports.Fields{
		"caseId":    event.CaseID,
		"type":      event.Type,
		"actorId":   event.ActorID,
		"timestamp": ts.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("record case event: %w", err)
	}

	s.logger.Debug().
		Str("case_id", event.CaseID).
		Str("type", event.Type).
		Msg("case event recorded")
	return nil
}
