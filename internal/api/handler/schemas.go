package handler

import "github.com/medbuddy/second-opinion-api/internal/core/domain"

// errorResponse mirrors the envelope produced by the central error handler,
// declared here so the swagger annotations can reference it.
type errorResponse struct {
	Error string `json:"error"`
}

type caseResponse struct {
	Message string      `json:"message,omitempty"`
	Case    domain.Case `json:"case"`
}

type caseListResponse struct {
	Cases []domain.Case `json:"cases"`
}

type messageListResponse struct {
	Messages []domain.Message `json:"messages"`
}

type eventListResponse struct {
	Events []domain.CaseEvent `json:"events"`
}
