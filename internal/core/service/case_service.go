package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// CaseService implements the case lifecycle state machine over the record
// store. Accept and SubmitOpinion use conditional updates so the state
// precondition check is atomic with the write: two doctors racing to claim
// the same case cannot both succeed.
type CaseService struct {
	store  ports.RecordStore
	events ports.EventPublisher
	logger zerolog.Logger
}

func NewCaseService(store ports.RecordStore, events ports.EventPublisher, logger zerolog.Logger) *CaseService {
	return &CaseService{store: store, events: events, logger: logger}
}

func (s *CaseService) Submit(ctx context.Context, input ports.SubmitCaseInput) (*domain.Case, error) {
	if input.Title == "" || input.Description == "" {
		return nil, fmt.Errorf("submit case: %w", domain.ErrValidation)
	}

	docs := input.Documents
	if docs == nil {
		docs = []domain.Document{}
	}
	rawDocs, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("submit case: encode documents: %w", err)
	}

	rec, err := s.store.Create(ctx, ports.CollectionCases, ports.Fields{
		"userId":            input.OwnerID,
		"doctorId":          "",
		"title":             input.Title,
		"description":       input.Description,
		"existingDiagnosis": input.ExistingDiagnosis,
		"questions":         input.Questions,
		"preferredLanguage": input.PreferredLanguage,
		"status":            string(domain.StatusSubmitted),
		"documents":         string(rawDocs),
		"opinion":           "",
	})
	if err != nil {
		return nil, fmt.Errorf("submit case: %w", err)
	}
	c := caseFromRecord(rec)

	s.publish(domain.EventCaseSubmitted, c.ID, input.OwnerID)
	s.logger.Info().Str("case_id", c.ID).Str("user_id", input.OwnerID).Msg("case submitted")
	return c, nil
}

func (s *CaseService) Get(ctx context.Context, caseID string, ident domain.Identity) (*domain.Case, error) {
	c, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.ReadableBy(ident) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func (s *CaseService) ListForOwner(ctx context.Context, userID string) ([]domain.Case, error) {
	return s.list(ctx, ports.Fields{"userId": userID})
}

func (s *CaseService) ListSubmitted(ctx context.Context) ([]domain.Case, error) {
	return s.list(ctx, ports.Fields{"status": string(domain.StatusSubmitted)})
}

func (s *CaseService) ListForDoctor(ctx context.Context, doctorID string) ([]domain.Case, error) {
	return s.list(ctx, ports.Fields{"doctorId": doctorID})
}

// Accept claims a submitted case. The conditional update guarantees that
// when two doctors race, exactly one claim lands and the loser observes
// ErrInvalidTransition.
func (s *CaseService) Accept(ctx context.Context, caseID, doctorID string) (*domain.Case, error) {
	rec, err := s.store.UpdateIf(ctx, ports.CollectionCases, caseID,
		ports.Fields{"status": string(domain.StatusSubmitted)},
		ports.Fields{
			"doctorId": doctorID,
			"status":   string(domain.StatusUnderReview),
		})
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrRecordNotFound):
			return nil, domain.ErrCaseNotFound
		case errors.Is(err, ports.ErrPreconditionFailed):
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("accept case: %w", err)
	}
	c := caseFromRecord(rec)

	s.publish(domain.EventCaseAccepted, c.ID, doctorID)
	s.logger.Info().Str("case_id", c.ID).Str("doctor_id", doctorID).Msg("case accepted")
	return c, nil
}

func (s *CaseService) SubmitOpinion(ctx context.Context, caseID, doctorID, opinion string) (*domain.Case, error) {
	if opinion == "" {
		return nil, fmt.Errorf("submit opinion: %w", domain.ErrValidation)
	}

	current, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(domain.StatusOpinionReady) {
		return nil, domain.ErrInvalidTransition
	}
	if current.DoctorID != doctorID {
		return nil, domain.ErrForbidden
	}

	rec, err := s.store.UpdateIf(ctx, ports.CollectionCases, caseID,
		ports.Fields{
			"status":   string(domain.StatusUnderReview),
			"doctorId": doctorID,
		},
		ports.Fields{
			"opinion": opinion,
			"status":  string(domain.StatusOpinionReady),
		})
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrRecordNotFound):
			return nil, domain.ErrCaseNotFound
		case errors.Is(err, ports.ErrPreconditionFailed):
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("submit opinion: %w", err)
	}
	c := caseFromRecord(rec)

	s.publish(domain.EventOpinionReady, c.ID, doctorID)
	s.logger.Info().Str("case_id", c.ID).Str("doctor_id", doctorID).Msg("opinion submitted")
	return c, nil
}

func (s *CaseService) Events(ctx context.Context, caseID string) ([]domain.CaseEvent, error) {
	recs, err := s.store.Query(ctx, ports.CollectionCaseEvents, ports.Fields{"caseId": caseID})
	if err != nil {
		return nil, fmt.Errorf("case events: %w", err)
	}

	events := make([]domain.CaseEvent, 0, len(recs))
	for _, r := range recs {
		events = append(events, eventFromRecord(r))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

func (s *CaseService) load(ctx context.Context, caseID string) (*domain.Case, error) {
	rec, err := s.store.GetByKey(ctx, ports.CollectionCases, "id", caseID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("load case: %w", err)
	}
	return caseFromRecord(rec), nil
}

func (s *CaseService) list(ctx context.Context, filter ports.Fields) ([]domain.Case, error) {
	recs, err := s.store.Query(ctx, ports.CollectionCases, filter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	cases := make([]domain.Case, 0, len(recs))
	for _, r := range recs {
		cases = append(cases, *caseFromRecord(r))
	}
	// Store enumeration order is unspecified; newest first for clients.
	sort.Slice(cases, func(i, j int) bool { return cases[i].CreatedAt.After(cases[j].CreatedAt) })
	return cases, nil
}

func (s *CaseService) publish(eventType, caseID, actorID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.CaseEvent{
		CaseID:    caseID,
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	})
}
