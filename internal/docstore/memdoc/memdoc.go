// Package memdoc is an in-memory docstore.Store. It backs package
// tests and doubles as a fake hosted store: snapshot delivery follows
// the hosted contract (a local echo with HasPendingWrites set, then the
// committed snapshot), and test hooks can suppress delivery or fail
// writes to exercise race and error paths.
package memdoc

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
)

// Store is an in-memory document store.
type Store struct {
	mu      sync.Mutex
	docs    map[string]map[string]any
	docSubs map[string]map[int]docstore.SnapshotHandler
	colSubs map[string]map[int]docstore.ListHandler
	nextSub int

	suppressEcho   bool
	suppressNotify bool
	writeErr       error
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string]map[string]any),
		docSubs: make(map[string]map[int]docstore.SnapshotHandler),
		colSubs: make(map[string]map[int]docstore.ListHandler),
	}
}

// SuppressEcho disables the HasPendingWrites local-echo delivery,
// leaving only committed snapshots. Test hook.
func (s *Store) SuppressEcho(suppress bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressEcho = suppress
}

// SuppressNotify disables all snapshot delivery for subsequent writes,
// simulating a store whose acknowledgments never arrive. Test hook.
func (s *Store) SuppressNotify(suppress bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressNotify = suppress
}

// FailWrites makes subsequent Set and Delete calls return err without
// mutating state. Pass nil to restore normal behavior. Test hook.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Doc implements docstore.Store.
func (s *Store) Doc(path string) docstore.Ref {
	return &ref{store: s, path: path}
}

// Collection implements docstore.Store.
func (s *Store) Collection(path string) docstore.Collection {
	return &collection{store: s, path: strings.TrimSuffix(path, "/")}
}

// Close implements docstore.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docSubs = make(map[string]map[int]docstore.SnapshotHandler)
	s.colSubs = make(map[string]map[int]docstore.ListHandler)
	return nil
}

func (s *Store) snapshotLocked(path string) docstore.Snapshot {
	data, ok := s.docs[path]
	return docstore.Snapshot{
		Path:   path,
		Exists: ok,
		Data:   docstore.CloneData(data),
	}
}

// collectionOf returns the collection prefix of a document path, or ""
// for a top-level path with no parent.
func collectionOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// handlersFor gathers the doc and collection handlers to notify for a
// mutation of path. Must be called with the lock held.
func (s *Store) handlersForLocked(path string) ([]docstore.SnapshotHandler, []docstore.ListHandler) {
	var docHandlers []docstore.SnapshotHandler
	for _, h := range s.docSubs[path] {
		docHandlers = append(docHandlers, h)
	}
	var colHandlers []docstore.ListHandler
	if col := collectionOf(path); col != "" {
		for _, h := range s.colSubs[col] {
			colHandlers = append(colHandlers, h)
		}
	}
	return docHandlers, colHandlers
}

func (s *Store) listLocked(colPath string) []docstore.Snapshot {
	prefix := colPath + "/"
	var snaps []docstore.Snapshot
	for path := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if strings.Contains(path[len(prefix):], "/") {
			continue // document in a nested subcollection
		}
		snaps = append(snaps, s.snapshotLocked(path))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Path < snaps[j].Path })
	return snaps
}

type ref struct {
	store *Store
	path  string
}

func (r *ref) Path() string { return r.path }

func (r *ref) Get(ctx context.Context) (docstore.Snapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshotLocked(r.path)
	if !snap.Exists {
		return snap, docstore.ErrNotFound
	}
	return snap, nil
}

func (r *ref) Set(ctx context.Context, data map[string]any, opts docstore.SetOptions) error {
	s := r.store
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}

	resolved := docstore.ResolveWrite(s.docs[r.path], data, opts.Merge, time.Now())
	s.docs[r.path] = resolved

	echo := !s.suppressEcho && !s.suppressNotify
	notify := !s.suppressNotify
	snap := s.snapshotLocked(r.path)
	docHandlers, colHandlers := s.handlersForLocked(r.path)
	var colSnaps []docstore.Snapshot
	if notify && len(colHandlers) > 0 {
		colSnaps = s.listLocked(collectionOf(r.path))
	}
	s.mu.Unlock()

	if echo {
		for _, h := range docHandlers {
			h(snap, docstore.Metadata{HasPendingWrites: true})
		}
	}
	if notify {
		for _, h := range docHandlers {
			h(snap, docstore.Metadata{})
		}
		for _, h := range colHandlers {
			h(colSnaps)
		}
	}
	return nil
}

func (r *ref) Delete(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}
	delete(s.docs, r.path)

	notify := !s.suppressNotify
	snap := docstore.Snapshot{Path: r.path}
	docHandlers, colHandlers := s.handlersForLocked(r.path)
	var colSnaps []docstore.Snapshot
	if notify && len(colHandlers) > 0 {
		colSnaps = s.listLocked(collectionOf(r.path))
	}
	s.mu.Unlock()

	if notify {
		for _, h := range docHandlers {
			h(snap, docstore.Metadata{})
		}
		for _, h := range colHandlers {
			h(colSnaps)
		}
	}
	return nil
}

func (r *ref) Subscribe(onNext docstore.SnapshotHandler, onError docstore.ErrorHandler) func() {
	s := r.store
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.docSubs[r.path] == nil {
		s.docSubs[r.path] = make(map[int]docstore.SnapshotHandler)
	}
	s.docSubs[r.path][id] = onNext
	snap := s.snapshotLocked(r.path)
	s.mu.Unlock()

	onNext(snap, docstore.Metadata{})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.docSubs[r.path], id)
	}
}

type collection struct {
	store *Store
	path  string
}

func (c *collection) Path() string { return c.path }

func (c *collection) Doc(id string) docstore.Ref {
	return &ref{store: c.store, path: c.path + "/" + id}
}

func (c *collection) NewDoc() docstore.Ref {
	return c.Doc(uuid.NewString())
}

func (c *collection) List(ctx context.Context) ([]docstore.Snapshot, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.store.listLocked(c.path), nil
}

func (c *collection) Subscribe(onNext docstore.ListHandler, onError docstore.ErrorHandler) func() {
	s := c.store
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.colSubs[c.path] == nil {
		s.colSubs[c.path] = make(map[int]docstore.ListHandler)
	}
	s.colSubs[c.path][id] = onNext
	snaps := s.listLocked(c.path)
	s.mu.Unlock()

	onNext(snaps)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.colSubs[c.path], id)
	}
}
