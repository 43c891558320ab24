package syncer

import (
	"context"
	"time"
)

// Conflict reasons.
const (
	ReasonRemoteUpdate = "remote-update"
	ReasonWriteTimeout = "write-timeout"
	ReasonRetryFailed  = "retry-failed"
)

// Strategy selects how ResolveSyncConflicts settles conflicts.
type Strategy string

const (
	// StrategyLocal retries the local write on top of the observed
	// remote version.
	StrategyLocal Strategy = "local"
	// StrategyServer accepts the remote state and discards the local
	// write.
	StrategyServer Strategy = "server"
)

// Meta is the version metadata stored under the "meta" field of every
// versioned document envelope.
type Meta struct {
	Version       int64  `json:"version"`
	BaseVersion   int64  `json:"baseVersion"`
	UpdatedBy     string `json:"updatedBy,omitempty"`
	ClientCounter int64  `json:"clientCounter,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// WriteOptions controls a versioned write.
type WriteOptions struct {
	// Merge folds fields into the existing document instead of
	// replacing it.
	Merge bool
	// Debounce coalesces rapid successive writes to the same document
	// into one trailing write.
	Debounce bool
	// BaseVersionOverride pins the write's base version instead of
	// reading the version ledger. Used by conflict-resolution retries.
	BaseVersionOverride *int64
	// BuildPersistedData transforms the local payload into the stored
	// form, typically to stamp write-time-only fields such as server
	// timestamps that must not appear in the optimistic local copy.
	BuildPersistedData func(local map[string]any) map[string]any
}

// PendingWrite tracks one in-flight optimistic write.
type PendingWrite struct {
	Path          string
	LocalData     map[string]any
	BaseVersion   int64
	ClientCounter int64
	QueuedAt      time.Time

	retry   retryFunc
	timeout *time.Timer
}

type retryFunc func(ctx context.Context, baseVersion int64) error

// ConflictLocal is the local side of a conflict: the optimistic write
// that lost the race.
type ConflictLocal struct {
	Data          map[string]any `json:"data"`
	BaseVersion   int64          `json:"baseVersion"`
	ClientCounter int64          `json:"clientCounter"`
	QueuedAt      time.Time      `json:"queuedAt"`
}

// ConflictRemote is the remote side of a conflict: the foreign state
// observed on top of the local write's base. Data is empty for
// write-timeout conflicts, where the server state is unknown.
type ConflictRemote struct {
	Data       map[string]any `json:"data,omitempty"`
	Meta       Meta           `json:"meta"`
	ObservedAt time.Time      `json:"observedAt"`
}

// Conflict is a detected disagreement between a pending local write and
// the observed remote document state. Conflicts are surfaced as data,
// never thrown.
type Conflict struct {
	ID        string         `json:"id"`
	Path      string         `json:"path"`
	Reason    string         `json:"reason"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Local     ConflictLocal  `json:"local"`
	Remote    ConflictRemote `json:"remote"`

	// retry replays the losing write at a caller-chosen base version.
	// Nil for conflicts restored from a backup after a restart.
	retry retryFunc
}

// State is the coordinator's externally visible sync state.
type State struct {
	ClientID      string     `json:"clientId"`
	PendingWrites int        `json:"pendingWrites"`
	Count         int        `json:"count"`
	Conflicts     []Conflict `json:"conflicts"`
}

// Resolution reports the outcome of ResolveSyncConflicts.
type Resolution struct {
	Resolved  int `json:"resolved"`
	Remaining int `json:"remaining"`
}
