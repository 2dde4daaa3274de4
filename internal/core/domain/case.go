package domain

import (
	"errors"
	"time"
)

// CaseStatus represents the lifecycle state of a medical case.
type CaseStatus string

const (
	StatusSubmitted    CaseStatus = "submitted"
	StatusUnderReview  CaseStatus = "under_review"
	StatusOpinionReady CaseStatus = "opinion_ready"
)

// validTransitions defines the allowed state machine transitions.
// opinion_ready is terminal.
var validTransitions = map[CaseStatus][]CaseStatus{
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusOpinionReady},
}

var ErrCaseNotFound = errors.New("case not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Document references one uploaded file attached to a case. Filename is
// server-assigned; OriginalName is what the patient uploaded.
type Document struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	StoragePath  string `json:"storage_path"`
}

// Case is the core aggregate: a patient-submitted request for a second
// opinion, tracked through the three-state lifecycle.
type Case struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	DoctorID          string     `json:"doctor_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	ExistingDiagnosis string     `json:"existing_diagnosis,omitempty"`
	Questions         string     `json:"questions"`
	PreferredLanguage string     `json:"preferred_language"`
	Status            CaseStatus `json:"status"`
	Documents         []Document `json:"documents"`
	Opinion           string     `json:"opinion,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ReadableBy reports whether the given identity may read this case:
// the owner, the assigned doctor, any doctor while the case is still
// unclaimed, or an admin.
func (c *Case) ReadableBy(ident Identity) bool {
	switch ident.Role {
	case RoleAdmin:
		return true
	case RoleDoctor:
		return c.Status == StatusSubmitted || c.DoctorID == ident.ID
	default:
		return c.UserID == ident.ID
	}
}
