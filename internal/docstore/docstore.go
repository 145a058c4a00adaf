// Package docstore provides a hierarchical keyed document store with live
// change notifications, plus the path scheme used to partition tenant and
// user data inside it.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a document does not exist at the given path.
var ErrNotFound = errors.New("document not found")

// Path is a hierarchical storage location, a list of string segments
// alternating collection and document ids.
type Path []string

// String joins the path segments with "/".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Child returns the path extended by the given segments.
func (p Path) Child(segments ...string) Path {
	child := make(Path, 0, len(p)+len(segments))
	child = append(child, p...)
	child = append(child, segments...)
	return child
}

// Document is the stored value of a single record.
type Document map[string]interface{}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// SnapshotDoc is one document within a collection snapshot, annotated with
// its id (the final path segment).
type SnapshotDoc struct {
	ID   string
	Data Document
}

// Snapshot is the full current state of a subscribed collection. Consumers
// replace, not merge: each snapshot supersedes every earlier one.
type Snapshot struct {
	Docs []SnapshotDoc
}

// Subscription is a live feed of collection snapshots. The initial state of
// the collection is delivered as the first snapshot. Cancel releases the
// listener; the snapshot channel is closed afterwards.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Cancel()
}

// Store is a keyed document store addressed by hierarchical paths.
// Implementations provide no cross-document transactional guarantees.
type Store interface {
	// Get returns the document at path, or ErrNotFound.
	Get(ctx context.Context, path Path) (Document, error)
	// Set writes the full document at path, creating or replacing it.
	Set(ctx context.Context, path Path, doc Document) error
	// Update merges the given fields into the document at path.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, path Path, fields Document) error
	// Delete removes the document at path. Deleting a nonexistent
	// document is not an error.
	Delete(ctx context.Context, path Path) error
	// Subscribe opens a live subscription over the collection at path.
	Subscribe(ctx context.Context, collection Path) (Subscription, error)
	// Close releases the store and cancels all subscriptions.
	Close() error
}
