package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// MessageService manages the append-only per-case conversation. Messages are
// never edited or deleted; ordering is restored on read because the store
// does not guarantee enumeration order.
type MessageService struct {
	store  ports.RecordStore
	logger zerolog.Logger
}

func NewMessageService(store ports.RecordStore, logger zerolog.Logger) *MessageService {
	return &MessageService{store: store, logger: logger}
}

func (s *MessageService) Post(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	// Only the two conversation parties may post. The sender type comes
	// from the verified role, never from the request body.
	switch sender.Role {
	case domain.RoleUser:
		if c.UserID != sender.ID {
			return nil, domain.ErrForbidden
		}
	case domain.RoleDoctor:
		if c.DoctorID != sender.ID {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}

	rec, err := s.store.Create(ctx, ports.CollectionMessages, ports.Fields{
		"caseId":     caseID,
		"senderId":   sender.ID,
		"senderType": sender.Role,
		"message":    text,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	s.logger.Info().Str("case_id", caseID).Str("sender_type", sender.Role).Msg("message posted")
	return messageFromRecord(rec), nil
}

func (s *MessageService) List(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !canReadMessages(c, caller) {
		return nil, domain.ErrForbidden
	}

	recs, err := s.store.Query(ctx, ports.CollectionMessages, ports.Fields{"caseId": caseID})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	msgs := make([]domain.Message, 0, len(recs))
	for _, r := range recs {
		msgs = append(msgs, *messageFromRecord(r))
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

// canReadMessages is stricter than case reads: triaging doctors may inspect
// an unclaimed case but not its conversation.
func canReadMessages(c *domain.Case, ident domain.Identity) bool {
	switch ident.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDoctor:
		return c.DoctorID == ident.ID
	default:
		return c.UserID == ident.ID
	}
}

func (s *MessageService) loadCase(ctx context.Context, caseID string) (*domain.Case, error) {
	rec, err := s.store.GetByKey(ctx, ports.CollectionCases, "id", caseID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("load case: %w", err)
	}
	return caseFromRecord(rec), nil
}
