// Package syncer implements the optimistic-write synchronization layer
// between the data layer and the document store. It versions every
// remote write, tracks in-flight optimistic writes, detects write/write
// races against other household members, and surfaces conflicts as data
// for explicit resolution.
//
// A Coordinator instance owns all sync state for one session. Every
// incoming snapshot must be routed through ObserveSnapshot and every
// remote persistence through ApplyVersionedWrite or
// ScheduleVersionedWrite.
package syncer

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
)

const (
	defaultWriteTimeout     = 15 * time.Second
	defaultDebounceInterval = 600 * time.Millisecond

	clientIDPrefix = "mm_"
)

// ErrClosed is returned by writes issued after Close.
var ErrClosed = errors.New("syncer: coordinator closed")

// Options configures a Coordinator. Zero values select the defaults.
type Options struct {
	// WriteTimeout is how long a pending write may go unacknowledged
	// before it escalates to a write-timeout conflict. Default 15s.
	WriteTimeout time.Duration
	// DebounceInterval is the quiet period for debounced writes.
	// Default 600ms.
	DebounceInterval time.Duration
	// Docs lets conflicts restored from a backup rebuild their retry
	// against the document store, so the local strategy keeps working
	// across restarts. When nil, restored conflicts can only be
	// settled with the server strategy.
	Docs docstore.Store
}

// Coordinator is the sync coordinator. All state is guarded by mu;
// mutation happens inside short critical sections and listener
// callbacks run outside them.
type Coordinator struct {
	state *localstate.DB
	opts  Options

	mu        sync.Mutex
	closed    bool
	clientID  string
	counter   int64
	versions  map[string]int64
	pending   map[string]*PendingWrite
	conflicts map[string]*Conflict
	debounced map[string]*debounceEntry

	listeners    map[int]func(State)
	nextListener int
}

// New constructs a Coordinator, loading (or creating) the persisted
// client identity and restoring any conflict backup from a previous
// session.
func New(state *localstate.DB, opts Options) (*Coordinator, error) {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = defaultDebounceInterval
	}

	clientID, counter, err := loadIdentity(state)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		state:     state,
		opts:      opts,
		clientID:  clientID,
		counter:   counter,
		versions:  make(map[string]int64),
		pending:   make(map[string]*PendingWrite),
		conflicts: make(map[string]*Conflict),
		debounced: make(map[string]*debounceEntry),
		listeners: make(map[int]func(State)),
	}
	c.restoreBackup()
	return c, nil
}

// ClientID returns this client's stable identifier.
func (c *Coordinator) ClientID() string {
	return c.clientID
}

// Close cancels all armed timers and releases blocked debounced
// writers. Pending writes and conflicts are left in durable state for
// the next session.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, p := range c.pending {
		if p.timeout != nil {
			p.timeout.Stop()
		}
	}
	var entries []*debounceEntry
	for _, e := range c.debounced {
		e.timer.Stop()
		entries = append(entries, e)
	}
	c.debounced = make(map[string]*debounceEntry)
	c.listeners = make(map[int]func(State))
	c.mu.Unlock()

	for _, e := range entries {
		e.settle(ErrClosed)
	}
}

// loadIdentity reads the persisted client id and write counter,
// creating the id on first use. Both survive restarts.
func loadIdentity(state *localstate.DB) (string, int64, error) {
	clientID, ok, err := state.Get(localstate.KeyClientID)
	if err != nil {
		return "", 0, fmt.Errorf("load client id: %w", err)
	}
	if !ok || clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()
		if err := state.Set(localstate.KeyClientID, clientID); err != nil {
			return "", 0, fmt.Errorf("persist client id: %w", err)
		}
	}

	var counter int64
	raw, ok, err := state.Get(localstate.KeyClientCounter)
	if err != nil {
		return "", 0, fmt.Errorf("load client counter: %w", err)
	}
	if ok {
		counter, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			slog.Warn("sync: invalid persisted client counter, resetting", "value", raw)
			counter = 0
		}
	}
	return clientID, counter, nil
}

// ObserveSnapshot processes one incoming remote snapshot for a
// document. It advances the version ledger, acknowledges this client's
// own writes, and escalates foreign races to the conflict store. Wire
// this to every document subscription the data layer opens.
func (c *Coordinator) ObserveSnapshot(snap docstore.Snapshot, docMeta docstore.Metadata) {
	obs := parseObserved(snap.Data)

	c.mu.Lock()
	if obs.versionOK {
		c.rememberVersionLocked(snap.Path, obs.meta.Version)
	}

	// Own-write acknowledgment runs before conflict detection so a
	// client never flags its own successful write as a foreign
	// conflict.
	if c.maybeAcknowledgePendingLocked(snap.Path, obs, docMeta) {
		c.finishMutationLocked()
		return
	}

	p := c.pending[snap.Path]
	if !shouldTrackConflict(c.clientID, p, obs, docMeta) {
		c.mu.Unlock()
		return
	}

	remote := ConflictRemote{
		Data:       cloneData(DocumentData(snap.Data)),
		Meta:       obs.meta,
		ObservedAt: time.Now().UTC(),
	}
	c.trackConflictLocked(snap.Path, p, remote, ReasonRemoteUpdate)
	c.finishMutationLocked()
}

// maybeAcknowledgePendingLocked clears the pending write and any
// conflict for path when the snapshot confirms this client's write
// round-tripped: same writer, counter at or above the pending one.
// Returns true when an acknowledgment happened.
func (c *Coordinator) maybeAcknowledgePendingLocked(path string, obs observedMeta, docMeta docstore.Metadata) bool {
	if docMeta.HasPendingWrites {
		return false // local echo; not a server confirmation
	}
	p := c.pending[path]
	if p == nil {
		return false
	}
	if obs.meta.UpdatedBy != c.clientID || !obs.counterOK {
		return false
	}
	if obs.meta.ClientCounter < p.ClientCounter {
		return false // ack of an older, superseded write
	}

	c.clearPendingWriteLocked(path)
	delete(c.conflicts, path)
	return true
}

// ClearSyncState drops all tracked state for a document. Called when
// the document is deleted.
func (c *Coordinator) ClearSyncState(path string) {
	c.mu.Lock()
	delete(c.versions, path)
	c.clearPendingWriteLocked(path)
	delete(c.conflicts, path)
	c.finishMutationLocked()
}

// finishMutationLocked persists the conflict backup and notifies
// listeners after a state mutation. It releases the lock: listener
// callbacks run outside the critical section so they may call back into
// the coordinator.
func (c *Coordinator) finishMutationLocked() {
	state := c.stateLocked()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	c.persistBackup(state)
	for _, listener := range listeners {
		notifyListener(listener, state)
	}
}
