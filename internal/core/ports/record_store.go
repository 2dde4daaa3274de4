package ports

import (
	"context"
	"errors"
)

// Logical collection names. Every component persists through these; the
// backing engine (Mongo or embedded SQLite) is chosen by configuration.
const (
	CollectionUsers      = "users"
	CollectionDoctors    = "doctors"
	CollectionCases      = "cases"
	CollectionMessages   = "messages"
	CollectionCaseEvents = "case_events"
)

// Record is a persisted record as returned by the store. The "id" field is
// always present and server-assigned.
type Record = map[string]any

// Fields is a set of field name/value pairs used for creation, partial
// updates, and equality filters.
type Fields = map[string]any

var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateKey is returned by Create when a unique index rejects the
// record, e.g. two concurrent registrations racing on the same email.
var ErrDuplicateKey = errors.New("record violates a unique key")

// ErrPreconditionFailed is returned by UpdateIf when the record exists but
// one of the expected fields no longer matches. Callers use this to detect a
// lost race and translate it into a domain error.
var ErrPreconditionFailed = errors.New("record precondition failed")

// RecordStore is the generic persistence abstraction underlying users,
// doctors, cases, messages, and the case audit trail.
//
// Semantics, identical across backends:
//   - Create assigns a fresh unique id and a createdAt timestamp, then persists.
//   - GetByKey is an exact-match lookup on a single field (unique keys such as
//     id or email are assumed to match at most one record).
//   - Query returns every record matching all given field equalities; an
//     empty filter returns the whole collection. Enumeration order is
//     unspecified; callers sort when ordering matters.
//   - Update merges fields into the existing record and stamps updatedAt.
//   - UpdateIf is Update guarded by expected current values, making the
//     read-check-write cycle atomic at the store boundary.
//
// Timestamps are stored as RFC 3339 strings so records round-trip identically
// through both backends.
type RecordStore interface {
	Create(ctx context.Context, collection string, fields Fields) (Record, error)
	GetByKey(ctx context.Context, collection, key string, value any) (Record, error)
	Query(ctx context.Context, collection string, filter Fields) ([]Record, error)
	Update(ctx context.Context, collection, id string, fields Fields) (Record, error)
	UpdateIf(ctx context.Context, collection, id string, expect, fields Fields) (Record, error)
}
