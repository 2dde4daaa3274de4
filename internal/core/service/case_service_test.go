package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

type capturePublisher struct {
	events []domain.CaseEvent
}

func (p *capturePublisher) Publish(event domain.CaseEvent) {
	p.events = append(p.events, event)
}

func newCaseService(store ports.RecordStore) (*CaseService, *capturePublisher) {
	pub := &capturePublisher{}
	return NewCaseService(store, pub, zerolog.Nop()), pub
}

func submitTestCase(t *testing.T, svc *CaseService, ownerID string) *domain.Case {
	t.Helper()
	c, err := svc.Submit(context.Background(), ports.SubmitCaseInput{
		OwnerID:           ownerID,
		Title:             "Recurring chest pain",
		Description:       "Pain after exercise for three months",
		Questions:         "Is the current diagnosis correct?",
		PreferredLanguage: "English",
		Documents: []domain.Document{
			{Filename: "1-scan.pdf", OriginalName: "scan.pdf", StoragePath: "uploads/1-scan.pdf"},
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return c
}

func TestCaseService_Submit(t *testing.T) {
	svc, pub := newCaseService(newMemStore())

	c := submitTestCase(t, svc, "user-1")
	if c.Status != domain.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", c.Status)
	}
	if c.DoctorID != "" {
		t.Fatalf("expected no doctor, got %s", c.DoctorID)
	}
	if c.Opinion != "" {
		t.Fatalf("expected no opinion")
	}
	if len(c.Documents) != 1 || c.Documents[0].OriginalName != "scan.pdf" {
		t.Fatalf("documents not round-tripped: %+v", c.Documents)
	}
	if len(pub.events) != 1 || pub.events[0].Type != domain.EventCaseSubmitted {
		t.Fatalf("expected submitted event, got %+v", pub.events)
	}
}

func TestCaseService_Submit_MissingFields(t *testing.T) {
	svc, _ := newCaseService(newMemStore())

	_, err := svc.Submit(context.Background(), ports.SubmitCaseInput{OwnerID: "user-1"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCaseService_Accept(t *testing.T) {
	svc, pub := newCaseService(newMemStore())
	c := submitTestCase(t, svc, "user-1")

	accepted, err := svc.Accept(context.Background(), c.ID, "doc-1")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != domain.StatusUnderReview || accepted.DoctorID != "doc-1" {
		t.Fatalf("unexpected case after accept: %+v", accepted)
	}
	if pub.events[len(pub.events)-1].Type != domain.EventCaseAccepted {
		t.Fatalf("expected accepted event")
	}
}

func TestCaseService_Accept_SecondDoctorLoses(t *testing.T) {
	store := newMemStore()
	svc, _ := newCaseService(store)
	c := submitTestCase(t, svc, "user-1")

	if _, err := svc.Accept(context.Background(), c.ID, "doc-a"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if _, err := svc.Accept(context.Background(), c.ID, "doc-b"); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// The losing call must not have overwritten the assignment.
	rec, _ := store.GetByKey(context.Background(), ports.CollectionCases, "id", c.ID)
	if rec["doctorId"] != "doc-a" {
		t.Fatalf("assignment overwritten: %v", rec["doctorId"])
	}
}

func TestCaseService_Accept_NotFound(t *testing.T) {
	svc, _ := newCaseService(newMemStore())

	if _, err := svc.Accept(context.Background(), "missing", "doc-1"); err != domain.ErrCaseNotFound {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestCaseService_SubmitOpinion(t *testing.T) {
	svc, pub := newCaseService(newMemStore())
	c := submitTestCase(t, svc, "user-1")
	_, _ = svc.Accept(context.Background(), c.ID, "doc-1")

	done, err := svc.SubmitOpinion(context.Background(), c.ID, "doc-1", "No surgery needed.")
	if err != nil {
		t.Fatalf("submit opinion failed: %v", err)
	}
	if done.Status != domain.StatusOpinionReady || done.Opinion != "No surgery needed." {
		t.Fatalf("unexpected case: %+v", done)
	}
	if pub.events[len(pub.events)-1].Type != domain.EventOpinionReady {
		t.Fatalf("expected opinion event")
	}

	// opinion_ready is terminal.
	if _, err := svc.SubmitOpinion(context.Background(), c.ID, "doc-1", "Again"); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on second opinion, got %v", err)
	}
}

func TestCaseService_SubmitOpinion_WrongDoctor(t *testing.T) {
	svc, _ := newCaseService(newMemStore())
	c := submitTestCase(t, svc, "user-1")
	_, _ = svc.Accept(context.Background(), c.ID, "doc-1")

	if _, err := svc.SubmitOpinion(context.Background(), c.ID, "doc-2", "Mine!"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCaseService_SubmitOpinion_WrongState(t *testing.T) {
	svc, _ := newCaseService(newMemStore())
	c := submitTestCase(t, svc, "user-1")

	if _, err := svc.SubmitOpinion(context.Background(), c.ID, "doc-1", "Too early"); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCaseService_Get_Authorization(t *testing.T) {
	svc, _ := newCaseService(newMemStore())
	c := submitTestCase(t, svc, "user-1")

	owner := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	stranger := domain.Identity{ID: "user-2", Role: domain.RoleUser}
	doctor := domain.Identity{ID: "doc-1", Role: domain.RoleDoctor}
	otherDoctor := domain.Identity{ID: "doc-2", Role: domain.RoleDoctor}
	admin := domain.Identity{ID: "adm-1", Role: domain.RoleAdmin}

	if _, err := svc.Get(context.Background(), c.ID, owner); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), c.ID, stranger); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	// Any doctor may triage an unclaimed case.
	if _, err := svc.Get(context.Background(), c.ID, doctor); err != nil {
		t.Fatalf("triage read failed: %v", err)
	}

	_, _ = svc.Accept(context.Background(), c.ID, "doc-1")
	if _, err := svc.Get(context.Background(), c.ID, otherDoctor); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for unassigned doctor, got %v", err)
	}
	if _, err := svc.Get(context.Background(), c.ID, doctor); err != nil {
		t.Fatalf("assigned doctor read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), c.ID, admin); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestCaseService_Lists(t *testing.T) {
	svc, _ := newCaseService(newMemStore())
	c1 := submitTestCase(t, svc, "user-1")
	c2 := submitTestCase(t, svc, "user-2")
	_, _ = svc.Accept(context.Background(), c2.ID, "doc-1")

	mine, err := svc.ListForOwner(context.Background(), "user-1")
	if err != nil || len(mine) != 1 || mine[0].ID != c1.ID {
		t.Fatalf("unexpected owner list: %v %+v", err, mine)
	}

	open, err := svc.ListSubmitted(context.Background())
	if err != nil || len(open) != 1 || open[0].ID != c1.ID {
		t.Fatalf("unexpected triage list: %v %+v", err, open)
	}

	assigned, err := svc.ListForDoctor(context.Background(), "doc-1")
	if err != nil || len(assigned) != 1 || assigned[0].ID != c2.ID {
		t.Fatalf("unexpected doctor list: %v %+v", err, assigned)
	}
}

func TestCaseService_EventsSorted(t *testing.T) {
	store := newMemStore()
	svc, _ := newCaseService(store)
	recorder := NewAuditService(store, zerolog.Nop())

	c := submitTestCase(t, svc, "user-1")
	for _, ev := range []domain.CaseEvent{
		{CaseID: c.ID, Type: domain.EventCaseSubmitted, ActorID: "user-1"},
		{CaseID: c.ID, Type: domain.EventCaseAccepted, ActorID: "doc-1"},
		{CaseID: c.ID, Type: domain.EventOpinionReady, ActorID: "doc-1"},
	} {
		if err := recorder.Record(context.Background(), ev); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	events, err := svc.Events(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, ev := range events[1:] {
		if ev.Timestamp.Before(events[i].Timestamp) {
			t.Fatalf("events out of order")
		}
	}
}
