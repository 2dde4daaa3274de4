package service

import (
	"encoding/json"
	"time"

	"github.com/medbuddy/second-opinion-api/internal/core/domain"
	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// Field accessors tolerant of missing keys. The store keeps timestamps as
// RFC 3339 strings so records decode identically from both backends.

func recordString(r ports.Record, key string) string {
	s, _ := r[key].(string)
	return s
}

func recordBool(r ports.Record, key string) bool {
	b, _ := r[key].(bool)
	return b
}

func recordTime(r ports.Record, key string) time.Time {
	s, _ := r[key].(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func userFromRecord(r ports.Record) *domain.User {
	return &domain.User{
		ID:           recordString(r, "id"),
		Name:         recordString(r, "name"),
		Email:        recordString(r, "email"),
		PasswordHash: recordString(r, "password"),
		Role:         recordString(r, "role"),
		Country:      recordString(r, "country"),
		Language:     recordString(r, "language"),
		Verified:     recordBool(r, "verified"),
		CreatedAt:    recordTime(r, "createdAt"),
	}
}

func caseFromRecord(r ports.Record) *domain.Case {
	c := &domain.Case{
		ID:                recordString(r, "id"),
		UserID:            recordString(r, "userId"),
		DoctorID:          recordString(r, "doctorId"),
		Title:             recordString(r, "title"),
		Description:       recordString(r, "description"),
		ExistingDiagnosis: recordString(r, "existingDiagnosis"),
		Questions:         recordString(r, "questions"),
		PreferredLanguage: recordString(r, "preferredLanguage"),
		Status:            domain.CaseStatus(recordString(r, "status")),
		Opinion:           recordString(r, "opinion"),
		CreatedAt:         recordTime(r, "createdAt"),
		UpdatedAt:         recordTime(r, "updatedAt"),
	}
	// Documents are persisted as a JSON string so the record's values stay
	// scalar across backends.
	if raw := recordString(r, "documents"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &c.Documents)
	}
	return c
}

func messageFromRecord(r ports.Record) *domain.Message {
	return &domain.Message{
		ID:         recordString(r, "id"),
		CaseID:     recordString(r, "caseId"),
		SenderID:   recordString(r, "senderId"),
		SenderType: recordString(r, "senderType"),
		Message:    recordString(r, "message"),
		Timestamp:  recordTime(r, "timestamp"),
	}
}

func eventFromRecord(r ports.Record) domain.CaseEvent {
	return domain.CaseEvent{
		ID:        recordString(r, "id"),
		CaseID:    recordString(r, "caseId"),
		Type:      recordString(r, "type"),
		ActorID:   recordString(r, "actorId"),
		Timestamp: recordTime(r, "timestamp"),
	}
}
