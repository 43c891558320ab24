// Package docstore defines the document-store surface the data layer
// and sync coordinator are written against: per-document get/set with
// merge, real-time snapshot subscriptions, and write-time transform
// values (server timestamps, atomic increments).
//
// Two implementations exist: memdoc (in-memory, used in tests and as a
// fake remote) and sqlitedoc (durable, SQLite-backed).
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Ref.Get when the document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// Snapshot is one observed state of a document.
type Snapshot struct {
	Path   string
	Exists bool
	Data   map[string]any
}

// Metadata accompanies snapshot delivery. HasPendingWrites is true when
// the snapshot is a local echo of a write that has not yet been
// committed by the store.
type Metadata struct {
	HasPendingWrites bool
}

// SetOptions controls Ref.Set behavior.
type SetOptions struct {
	// Merge folds the written fields into the existing document instead
	// of replacing it. Nested maps are merged recursively.
	Merge bool
}

// SnapshotHandler receives document snapshots from a subscription.
type SnapshotHandler func(snap Snapshot, meta Metadata)

// ListHandler receives the full document set of a collection.
type ListHandler func(snaps []Snapshot)

// ErrorHandler receives subscription delivery errors.
type ErrorHandler func(err error)

// Ref addresses a single document.
type Ref interface {
	Path() string
	Get(ctx context.Context) (Snapshot, error)
	Set(ctx context.Context, data map[string]any, opts SetOptions) error
	Delete(ctx context.Context) error

	// Subscribe delivers the current snapshot immediately, then every
	// subsequent change. The returned function stops delivery; no
	// handler is invoked after it returns.
	Subscribe(onNext SnapshotHandler, onError ErrorHandler) (unsubscribe func())
}

// Collection addresses the documents sharing a path prefix.
type Collection interface {
	Path() string
	Doc(id string) Ref
	// NewDoc returns a Ref with a freshly generated document id.
	NewDoc() Ref
	List(ctx context.Context) ([]Snapshot, error)
	Subscribe(onNext ListHandler, onError ErrorHandler) (unsubscribe func())
}

// Store is a connected document store.
type Store interface {
	Doc(path string) Ref
	Collection(path string) Collection
	Close() error
}
