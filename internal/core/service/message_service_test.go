package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

func messagingFixture(t *testing.T) (*MessageService, *CaseService, *domain.Case) {
	t.Helper()
	store := newMemStore()
	cases, _ := newCaseService(store)
	msgs := NewMessageService(store, zerolog.Nop())
	c := submitTestCase(t, cases, "user-1")
	return msgs, cases, c
}

func TestMessageService_Post_Empty(t *testing.T) {
	msgs, _, c := messagingFixture(t)

	owner := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	if _, err := msgs.Post(context.Background(), c.ID, owner, "   "); err != domain.ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessageService_Post_Owner(t *testing.T) {
	msgs, _, c := messagingFixture(t)

	owner := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	m, err := msgs.Post(context.Background(), c.ID, owner, "Any update?")
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if m.SenderType != domain.RoleUser || m.SenderID != "user-1" || m.CaseID != c.ID {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.Timestamp.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestMessageService_Post_Authorization(t *testing.T) {
	msgs, cases, c := messagingFixture(t)

	unassigned := domain.Identity{ID: "doc-9", Role: domain.RoleDoctor}
	if _, err := msgs.Post(context.Background(), c.ID, unassigned, "hello"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for unassigned doctor, got %v", err)
	}

	admin := domain.Identity{ID: "adm-1", Role: domain.RoleAdmin}
	if _, err := msgs.Post(context.Background(), c.ID, admin, "hello"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for admin, got %v", err)
	}

	_, _ = cases.Accept(context.Background(), c.ID, "doc-1")
	assigned := domain.Identity{ID: "doc-1", Role: domain.RoleDoctor}
	m, err := msgs.Post(context.Background(), c.ID, assigned, "I have reviewed the scans.")
	if err != nil {
		t.Fatalf("assigned doctor post failed: %v", err)
	}
	if m.SenderType != domain.RoleDoctor {
		t.Fatalf("sender type not derived from role: %s", m.SenderType)
	}
}

func TestMessageService_Post_CaseNotFound(t *testing.T) {
	msgs, _, _ := messagingFixture(t)

	owner := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	if _, err := msgs.Post(context.Background(), "missing", owner, "hi"); err != domain.ErrCaseNotFound {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestMessageService_List_OrderAndAuthorization(t *testing.T) {
	msgs, cases, c := messagingFixture(t)
	_, _ = cases.Accept(context.Background(), c.ID, "doc-1")

	owner := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	doctor := domain.Identity{ID: "doc-1", Role: domain.RoleDoctor}
	for _, text := range []string{"first", "second", "third"} {
		if _, err := msgs.Post(context.Background(), c.ID, owner, text); err != nil {
			t.Fatalf("post failed: %v", err)
		}
	}

	list, err := msgs.List(context.Background(), c.ID, doctor)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(list))
	}
	for i, m := range list[1:] {
		if m.Timestamp.Before(list[i].Timestamp) {
			t.Fatalf("messages out of order")
		}
	}

	stranger := domain.Identity{ID: "user-2", Role: domain.RoleUser}
	if _, err := msgs.List(context.Background(), c.ID, stranger); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}

	// Triage visibility does not extend to conversations.
	otherDoctor := domain.Identity{ID: "doc-2", Role: domain.RoleDoctor}
	if _, err := msgs.List(context.Background(), c.ID, otherDoctor); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for unassigned doctor, got %v", err)
	}

	admin := domain.Identity{ID: "adm-1", Role: domain.RoleAdmin}
	if _, err := msgs.List(context.Background(), c.ID, admin); err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
}
