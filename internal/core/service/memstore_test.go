package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medbuddy/second-opinion-api/internal/core/ports"
)

// memStore is an in-memory RecordStore honouring the same contract as the
// real backends: generated ids, RFC 3339 timestamps, merge updates, and
// conditional updates.
type memStore struct {
	mu          sync.Mutex
	collections map[string][]ports.Record
	nextID      int
	failWith    error // if set, every call returns this error
	failCreate  error // if set, only Create returns this error
}

func newMemStore() *memStore {
	return &memStore{collections: make(map[string][]ports.Record)}
}

func cloneRecord(r ports.Record) ports.Record {
	out := make(ports.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (m *memStore) Create(_ context.Context, collection string, fields ports.Fields) (ports.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.failCreate != nil {
		return nil, m.failCreate
	}

	m.nextID++
	rec := cloneRecord(fields)
	rec["id"] = fmt.Sprintf("rec-%d", m.nextID)
	rec["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	m.collections[collection] = append(m.collections[collection], rec)
	return cloneRecord(rec), nil
}

func (m *memStore) GetByKey(_ context.Context, collection, key string, value any) (ports.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	for _, rec := range m.collections[collection] {
		if rec[key] == value {
			return cloneRecord(rec), nil
		}
	}
	return nil, ports.ErrRecordNotFound
}

func (m *memStore) Query(_ context.Context, collection string, filter ports.Fields) ([]ports.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	var out []ports.Record
	for _, rec := range m.collections[collection] {
		if recordMatches(rec, filter) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, collection, id string, fields ports.Fields) (ports.Record, error) {
	return m.UpdateIf(ctx, collection, id, nil, fields)
}

func (m *memStore) UpdateIf(_ context.Context, collection, id string, expect, fields ports.Fields) (ports.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	for _, rec := range m.collections[collection] {
		if rec["id"] != id {
			continue
		}
		if !recordMatches(rec, expect) {
			return nil, ports.ErrPreconditionFailed
		}
		for k, v := range fields {
			rec[k] = v
		}
		rec["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		return cloneRecord(rec), nil
	}
	return nil, ports.ErrRecordNotFound
}

func recordMatches(rec ports.Record, filter ports.Fields) bool {
	for k, v := range filter {
		if rec[k] != v {
			return false
		}
	}
	return true
}
