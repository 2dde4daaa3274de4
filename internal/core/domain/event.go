package domain

import "time"

// Case lifecycle event types recorded in the audit trail.
const (
	EventCaseSubmitted = "case_submitted"
	EventCaseAccepted  = "case_accepted"
	EventOpinionReady  = "opinion_ready"
)

// CaseEvent records a single lifecycle transition on a case.
type CaseEvent struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}
