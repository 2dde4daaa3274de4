package domain

import (
	"errors"
	"time"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// Message is one entry in the append-only per-case conversation between the
// patient and the assigned doctor. Messages are never edited or deleted.
type Message struct {
	ID         string    `json:"id"`
	CaseID     string    `json:"case_id"`
	SenderID   string    `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
