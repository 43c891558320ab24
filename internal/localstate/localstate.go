// Package localstate is the durable local key-value store backing sync
// state that must survive restarts: the client identity, the write
// counter, and the conflict backup blob. It is single-process state
// guarded by an OS file lock, stored in SQLite under the app directory.
package localstate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	stateDir  = ".marmots"
	stateFile = "state.db"
)

// Well-known keys.
const (
	KeyClientID       = "client_id"
	KeyClientCounter  = "client_counter"
	KeyConflictBackup = "conflict_backup"
)

// DB is the durable local state store.
type DB struct {
	conn    *sql.DB
	baseDir string
	locker  *writeLocker
}

// Initialize creates (or opens) the local state database under baseDir.
func Initialize(baseDir string) (*DB, error) {
	dir := filepath.Join(baseDir, stateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dir, stateFile))
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	conn.Exec("PRAGMA busy_timeout=500")
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init kv table: %w", err)
	}

	return &DB{
		conn:    conn,
		baseDir: baseDir,
		locker:  newWriteLocker(dir),
	}, nil
}

// Open opens an existing local state database.
func Open(baseDir string) (*DB, error) {
	if _, err := os.Stat(filepath.Join(baseDir, stateDir, stateFile)); os.IsNotExist(err) {
		return nil, fmt.Errorf("local state not found: run 'marmots init' first")
	}
	return Initialize(baseDir)
}

// Close closes the store.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the value for key, with ok=false when absent.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, overwriting any previous value.
func (db *DB) Set(key, value string) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		return nil
	})
}

// Delete removes key; absent keys are a no-op.
func (db *DB) Delete(key string) error {
	return db.withWriteLock(func() error {
		if _, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %q: %w", key, err)
		}
		return nil
	})
}

// withWriteLock serializes mutations across processes sharing the same
// state directory.
func (db *DB) withWriteLock(fn func() error) error {
	if err := db.locker.acquire(lockTimeout); err != nil {
		return err
	}
	defer db.locker.release()
	return fn()
}
