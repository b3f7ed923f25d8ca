// Package docstore provides the revision-checked document store the POS
// core runs against.
//
// The store offers single-document operations only: get, revision-checked
// save, revision-checked delete, and partition scans. There are no
// multi-document transactions; callers model every mutation as a
// read-modify-write conditioned on the revision they last read. A save
// against a stale revision fails with a ConflictError and the caller must
// reload and decide whether to retry.
//
// Two implementations ship: SQLite (production, see sqlite.go) and
// in-memory (tests and demos, see memory.go).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Revision is the opaque token identifying the exact version of a
// document read. It must be passed back to authorize the next write.
// The zero value ("") means "create": the document must not exist yet.
type Revision string

// NoRevision is passed to Save when creating a new document.
const NoRevision Revision = ""

// Row is one document returned by a partition scan.
type Row struct {
	ID  string
	Rev Revision
	Doc json.RawMessage
}

// Store is the document store contract. All implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the document bytes and current revision for id.
	// Returns a NotFoundError when no document with that id exists.
	Get(ctx context.Context, id string) (json.RawMessage, Revision, error)

	// Save writes doc under id within partition. rev must be NoRevision
	// for a create, or the revision last read for an update. Returns the
	// new revision, or a ConflictError when rev is stale (or when a
	// create finds the id already taken).
	Save(ctx context.Context, id, partition string, doc any, rev Revision) (Revision, error)

	// Delete removes the document, conditioned on rev.
	Delete(ctx context.Context, id string, rev Revision) error

	// QueryByPartition returns every document in a partition.
	QueryByPartition(ctx context.Context, partition string) ([]Row, error)
}

// ConflictError reports a revision-checked write that lost the race: the
// document moved on since rev was read.
type ConflictError struct {
	ID  string
	Rev Revision
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: document %q changed since revision %q", e.ID, e.Rev)
}

// NotFoundError reports a missing document.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: document %q", e.ID)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// GetAs fetches a document and unmarshals it into out.
func GetAs(ctx context.Context, s Store, id string, out any) (Revision, error) {
	raw, rev, err := s.Get(ctx, id)
	if err != nil {
		return NoRevision, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return NoRevision, fmt.Errorf("decode document %q: %w", id, err)
	}
	return rev, nil
}
