// Package sqlitedoc is a durable docstore.Store on SQLite. It holds the
// household documents shared by every process on the machine, with
// in-process snapshot fan-out for subscribers. Documents are stored as
// JSON blobs keyed by path, so reads after a restart see exactly the
// float64/string value shapes a JSON round-trip produces.
package sqlitedoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path       TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    data       TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// Store is a SQLite-backed document store.
type Store struct {
	conn *sql.DB

	mu      sync.Mutex
	docSubs map[string]map[int]docstore.SnapshotHandler
	colSubs map[string]map[int]docstore.ListHandler
	nextSub int
}

// Open opens (or creates) the document database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open document database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	conn.Exec("PRAGMA busy_timeout=5000")
	conn.Exec("PRAGMA synchronous=NORMAL")

	store, err := NewStoreFromConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

// NewStoreFromConn builds a Store over an existing connection. The
// caller keeps ownership of lifecycle concerns it set up (pragmas,
// in-memory mode); the store applies its schema.
func NewStoreFromConn(conn *sql.DB) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create document schema: %w", err)
	}
	return &Store{
		conn:    conn,
		docSubs: make(map[string]map[int]docstore.SnapshotHandler),
		colSubs: make(map[string]map[int]docstore.ListHandler),
	}, nil
}

// Doc implements docstore.Store.
func (s *Store) Doc(path string) docstore.Ref {
	return &ref{store: s, path: path}
}

// Collection implements docstore.Store.
func (s *Store) Collection(path string) docstore.Collection {
	return &collection{store: s, path: strings.TrimSuffix(path, "/")}
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	s.docSubs = make(map[string]map[int]docstore.SnapshotHandler)
	s.colSubs = make(map[string]map[int]docstore.ListHandler)
	s.mu.Unlock()

	s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.conn.Close()
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

func (s *Store) readDoc(path string) (map[string]any, bool, error) {
	var blob string
	err := s.conn.QueryRow(`SELECT data FROM documents WHERE path = ?`, path).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read document %q: %w", path, err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, false, fmt.Errorf("decode document %q: %w", path, err)
	}
	return data, true, nil
}

func (s *Store) snapshot(path string) (docstore.Snapshot, error) {
	data, exists, err := s.readDoc(path)
	if err != nil {
		return docstore.Snapshot{}, err
	}
	return docstore.Snapshot{Path: path, Exists: exists, Data: data}, nil
}

func (s *Store) list(colPath string) ([]docstore.Snapshot, error) {
	rows, err := s.conn.Query(
		`SELECT path, data FROM documents WHERE collection = ? ORDER BY path`, colPath)
	if err != nil {
		return nil, fmt.Errorf("list collection %q: %w", colPath, err)
	}
	defer rows.Close()

	var snaps []docstore.Snapshot
	for rows.Next() {
		var path, blob string
		if err := rows.Scan(&path, &blob); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(blob), &data); err != nil {
			return nil, fmt.Errorf("decode document %q: %w", path, err)
		}
		snaps = append(snaps, docstore.Snapshot{Path: path, Exists: true, Data: data})
	}
	return snaps, rows.Err()
}

// handlersFor gathers the doc and collection handlers to notify for a
// mutation of path.
func (s *Store) handlersFor(path string) ([]docstore.SnapshotHandler, []docstore.ListHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

// notifyMutation delivers the committed snapshot of path to its
// subscribers. A durable local store has no unconfirmed echo phase, so
// every delivered snapshot is final.
func (s *Store) notifyMutation(path string) error {
	docHandlers, colHandlers := s.handlersFor(path)
	if len(docHandlers) == 0 && len(colHandlers) == 0 {
		return nil
	}

	snap, err := s.snapshot(path)
	if err != nil {
		return err
	}
	for _, h := range docHandlers {
		h(snap, docstore.Metadata{})
	}
	if len(colHandlers) > 0 {
		colSnaps, err := s.list(collectionOf(path))
		if err != nil {
			return err
		}
		for _, h := range colHandlers {
			h(colSnaps)
		}
	}
	return nil
}

type ref struct {
	store *Store
	path  string
}

func (r *ref) Path() string { return r.path }

func (r *ref) Get(ctx context.Context) (docstore.Snapshot, error) {
	snap, err := r.store.snapshot(r.path)
	if err != nil {
		return docstore.Snapshot{}, err
	}
	if !snap.Exists {
		return snap, docstore.ErrNotFound
	}
	return snap, nil
}

func (r *ref) Set(ctx context.Context, data map[string]any, opts docstore.SetOptions) error {
	s := r.store

	existing, _, err := s.readDoc(r.path)
	if err != nil {
		return err
	}
	resolved := docstore.ResolveWrite(existing, data, opts.Merge, time.Now())

	// Round-trip through JSON before storing so subscribers observe the
	// same value shapes a later cold read would.
	blob, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", r.path, err)
	}

	_, err = s.conn.Exec(
		`INSERT INTO documents (path, collection, data, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		r.path, collectionOf(r.path), string(blob),
	)
	if err != nil {
		return fmt.Errorf("write document %q: %w", r.path, err)
	}

	return s.notifyMutation(r.path)
}

func (r *ref) Delete(ctx context.Context) error {
	s := r.store
	if _, err := s.conn.Exec(`DELETE FROM documents WHERE path = ?`, r.path); err != nil {
		return fmt.Errorf("delete document %q: %w", r.path, err)
	}
	return s.notifyMutation(r.path)
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
	s.mu.Unlock()

	snap, err := s.snapshot(r.path)
	if err != nil && onError != nil {
		onError(err)
	} else {
		onNext(snap, docstore.Metadata{})
	}

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
	return c.store.list(c.path)
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
	s.mu.Unlock()

	snaps, err := s.list(c.path)
	if err != nil && onError != nil {
		onError(err)
	} else {
		onNext(snaps)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.colSubs[c.path], id)
	}
}
