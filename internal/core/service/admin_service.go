package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// AdminService computes read-only aggregates by scanning users and cases.
// Counts are recomputed on every call; acceptable at the small data volumes
// this system is built for.
type AdminService struct {
	store  ports.RecordStore
	logger zerolog.Logger
}

func NewAdminService(store ports.RecordStore, logger zerolog.Logger) *AdminService {
	return &AdminService{store: store, logger: logger}
}

func (s *AdminService) Stats(ctx context.Context) (*ports.Stats, error) {
	users, err := s.store.Query(ctx, ports.CollectionUsers, nil)
	if err != nil {
		return nil, fmt.Errorf("stats: scan users: %w", err)
	}
	cases, err := s.store.Query(ctx, ports.CollectionCases, nil)
	if err != nil {
		return nil, fmt.Errorf("stats: scan cases: %w", err)
	}

	stats := &ports.Stats{TotalCases: len(cases)}
	for _, u := range users {
		switch recordString(u, "role") {
		case domain.RoleUser:
			stats.TotalUsers++
		case domain.RoleDoctor:
			stats.TotalDoctors++
		}
	}
	for _, c := range cases {
		switch domain.CaseStatus(recordString(c, "status")) {
		case domain.StatusUnderReview:
			stats.ActiveCases++
		case domain.StatusOpinionReady:
			stats.CompletedCases++
		}
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]ports.UserSummary, error) {
	recs, err := s.store.Query(ctx, ports.CollectionUsers, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]ports.UserSummary, 0, len(recs))
	for _, r := range recs {
		users = append(users, ports.UserSummary{
			ID:        recordString(r, "id"),
			Name:      recordString(r, "name"),
			Email:     recordString(r, "email"),
			Role:      recordString(r, "role"),
			Verified:  recordBool(r, "verified"),
			CreatedAt: recordString(r, "createdAt"),
		})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt < users[j].CreatedAt })
	return users, nil
}
