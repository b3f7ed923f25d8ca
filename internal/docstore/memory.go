package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// MemoryStore is an in-memory Store for tests and demos. It applies the
// same revision semantics as the SQLite store, so code exercised against
// it behaves identically under conflict.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]*memoryDoc
}

type memoryDoc struct {
	partition string
	rev       int64
	body      json.RawMessage
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*memoryDoc)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (json.RawMessage, Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.docs[id]
	if !ok {
		return nil, NoRevision, &NotFoundError{ID: id}
	}
	body := make(json.RawMessage, len(d.body))
	copy(body, d.body)
	return body, revFromInt(d.rev), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, id, partition string, doc any, rev Revision) (Revision, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return NoRevision, fmt.Errorf("encode document %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[id]
	if rev == NoRevision {
		if ok {
			return NoRevision, &ConflictError{ID: id, Rev: rev}
		}
		m.docs[id] = &memoryDoc{partition: partition, rev: 1, body: body}
		return revFromInt(1), nil
	}

	if !ok {
		return NoRevision, &NotFoundError{ID: id}
	}
	want, err := strconv.ParseInt(string(rev), 10, 64)
	if err != nil {
		return NoRevision, fmt.Errorf("malformed revision %q: %w", rev, err)
	}
	if existing.rev != want {
		return NoRevision, &ConflictError{ID: id, Rev: rev}
	}
	existing.rev++
	existing.body = body
	existing.partition = partition
	return revFromInt(existing.rev), nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string, rev Revision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	want, err := strconv.ParseInt(string(rev), 10, 64)
	if err != nil {
		return fmt.Errorf("malformed revision %q: %w", rev, err)
	}
	if existing.rev != want {
		return &ConflictError{ID: id, Rev: rev}
	}
	delete(m.docs, id)
	return nil
}

// QueryByPartition implements Store. Results are ordered by id to match
// the SQLite implementation.
func (m *MemoryStore) QueryByPartition(_ context.Context, partition string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for id, d := range m.docs {
		if d.partition != partition {
			continue
		}
		body := make(json.RawMessage, len(d.body))
		copy(body, d.body)
		out = append(out, Row{ID: id, Rev: revFromInt(d.rev), Doc: body})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
