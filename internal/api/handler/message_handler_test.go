package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
)

type stubMessageService struct {
	postFn func(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error)
	listFn func(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error)
}

func (s *stubMessageService) Post(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error) {
	return s.postFn(ctx, caseID, sender, text)
}

func (s *stubMessageService) List(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error) {
	return s.listFn(ctx, caseID, caller)
}

func TestMessageHandler_Post_SenderFromClaims(t *testing.T) {
	e := testEcho()
	stub := &stubMessageService{
		postFn: func(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error) {
			if sender.ID != "u1" || sender.Role != domain.RoleUser {
				t.Fatalf("unexpected sender: %+v", sender)
			}
			return &domain.Message{
				ID: "m1", CaseID: caseID, SenderID: sender.ID,
				SenderType: sender.Role, Message: text, Timestamp: time.Now(),
			}, nil
		},
	}
	h := NewMessageHandler(stub)

	body := strings.NewReader(`{"message":"How long is recovery?","senderType":"doctor"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cases/c1/messages", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := authedContext(e, req, domain.Identity{ID: "u1", Role: domain.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Post(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok || data["sender_type"] != domain.RoleUser {
		t.Fatalf("sender type must come from verified claims, got %+v", resp["data"])
	}
}

func TestMessageHandler_Post_EmptyMessagePassedThrough(t *testing.T) {
	e := testEcho()
	stub := &stubMessageService{
		postFn: func(ctx context.Context, caseID string, sender domain.Identity, text string) (*domain.Message, error) {
			return nil, domain.ErrEmptyMessage
		},
	}
	h := NewMessageHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/cases/c1/messages", strings.NewReader(`{"message":"   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := authedContext(e, req, domain.Identity{ID: "u1", Role: domain.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Post(c); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessageHandler_List_Success(t *testing.T) {
	e := testEcho()
	stub := &stubMessageService{
		listFn: func(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error) {
			if caseID != "c1" {
				t.Fatalf("unexpected case id: %s", caseID)
			}
			return []domain.Message{
				{ID: "m1", CaseID: caseID, Message: "first"},
				{ID: "m2", CaseID: caseID, Message: "second"},
			}, nil
		},
	}
	h := NewMessageHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/c1/messages", nil)
	c, rec := authedContext(e, req, domain.Identity{ID: "u1", Role: domain.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string][]domain.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp["messages"]) != 2 {
		t.Fatalf("expected two messages, got %+v", resp)
	}
}

func TestMessageHandler_List_ForbiddenPassedThrough(t *testing.T) {
	e := testEcho()
	stub := &stubMessageService{
		listFn: func(ctx context.Context, caseID string, caller domain.Identity) ([]domain.Message, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewMessageHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/c1/messages", nil)
	c, _ := authedContext(e, req, domain.Identity{ID: "d9", Role: domain.RoleDoctor})
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.List(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
