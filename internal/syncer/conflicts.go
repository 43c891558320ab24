package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
)

// trackConflictLocked upserts a conflict for path. A conflict's
// identity persists across repeated observations of the same unresolved
// situation: the id and createdAt of an existing entry are preserved
// and only the remote side and updatedAt refresh.
func (c *Coordinator) trackConflictLocked(path string, p *PendingWrite, remote ConflictRemote, reason string) {
	now := time.Now().UTC()

	local := ConflictLocal{
		BaseVersion:   p.BaseVersion,
		ClientCounter: p.ClientCounter,
		QueuedAt:      p.QueuedAt,
		Data:          cloneData(p.LocalData),
	}
	remote.Data = cloneData(remote.Data)

	if existing, ok := c.conflicts[path]; ok {
		existing.Reason = reason
		existing.UpdatedAt = now
		existing.Local = local
		existing.Remote = remote
		if p.retry != nil {
			existing.retry = p.retry
		}
		return
	}

	c.conflicts[path] = &Conflict{
		ID:        uuid.NewString(),
		Path:      path,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
		Local:     local,
		Remote:    remote,
		retry:     p.retry,
	}
}

// ClearConflict removes the conflict for path, if any, persisting and
// notifying on change.
func (c *Coordinator) ClearConflict(path string) {
	c.mu.Lock()
	if _, ok := c.conflicts[path]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.conflicts, path)
	c.finishMutationLocked()
}

// SyncConflictState returns the current sync state: client id, pending
// write count, and unresolved conflicts oldest-first.
func (c *Coordinator) SyncConflictState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Coordinator) stateLocked() State {
	conflicts := make([]Conflict, 0, len(c.conflicts))
	for _, conflict := range c.conflicts {
		conflicts = append(conflicts, *conflict)
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].CreatedAt.Before(conflicts[j].CreatedAt)
	})

	return State{
		ClientID:      c.clientID,
		PendingWrites: len(c.pending),
		Count:         len(conflicts),
		Conflicts:     conflicts,
	}
}

// SubscribeSyncConflicts registers a listener for sync-state changes.
// The listener is invoked immediately with the current state, then on
// every change, until the returned disposer is called.
func (c *Coordinator) SubscribeSyncConflicts(listener func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener
	state := c.stateLocked()
	c.mu.Unlock()

	notifyListener(listener, state)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// notifyListener delivers one state update, containing panics so a bad
// listener cannot break fan-out to the others.
func notifyListener(listener func(State), state State) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sync: conflict listener panicked", "panic", r)
		}
	}()
	listener(state)
}

// conflictBackup is the durable crash-recovery form of unresolved
// conflicts.
type conflictBackup struct {
	UpdatedAt time.Time  `json:"updatedAt"`
	Conflicts []Conflict `json:"conflicts"`
}

// persistBackup mirrors the conflict set to durable local storage so
// conflicts survive a restart. The backup is removed entirely when the
// store is empty.
func (c *Coordinator) persistBackup(state State) {
	if state.Count == 0 {
		if err := c.state.Delete(localstate.KeyConflictBackup); err != nil {
			slog.Warn("sync: remove conflict backup", "err", err)
		}
		return
	}

	blob, err := json.Marshal(conflictBackup{
		UpdatedAt: time.Now().UTC(),
		Conflicts: state.Conflicts,
	})
	if err != nil {
		slog.Warn("sync: marshal conflict backup", "err", err)
		return
	}
	if err := c.state.Set(localstate.KeyConflictBackup, string(blob)); err != nil {
		slog.Warn("sync: persist conflict backup", "err", err)
	}
}

// restoreBackup loads conflicts persisted by a previous session. When
// a document store is available the retry is rebuilt from the backed-up
// local payload; otherwise restored conflicts can only be settled with
// the server strategy.
func (c *Coordinator) restoreBackup() {
	blob, ok, err := c.state.Get(localstate.KeyConflictBackup)
	if err != nil {
		slog.Warn("sync: read conflict backup", "err", err)
		return
	}
	if !ok {
		return
	}

	var backup conflictBackup
	if err := json.Unmarshal([]byte(blob), &backup); err != nil {
		slog.Warn("sync: parse conflict backup", "err", err)
		return
	}
	for _, conflict := range backup.Conflicts {
		restored := conflict
		if c.opts.Docs != nil && restored.Local.Data != nil {
			restored.retry = c.restoredRetry(restored.Path, restored.Local.Data)
		}
		c.conflicts[restored.Path] = &restored
	}
	if len(backup.Conflicts) > 0 {
		slog.Info("sync: restored conflicts from backup", "count", len(backup.Conflicts))
	}
}

// restoredRetry rebuilds a retry closure from a backed-up local
// payload. The original write's options did not survive the restart:
// the replay merges, since the payload holds exactly the fields the
// losing write touched.
func (c *Coordinator) restoredRetry(path string, localData map[string]any) retryFunc {
	local := cloneData(localData)
	return func(ctx context.Context, newBase int64) error {
		ref := c.opts.Docs.Doc(path)
		unsubscribe := ref.Subscribe(c.ObserveSnapshot, nil)
		defer unsubscribe()
		return c.ApplyVersionedWrite(ctx, ref, local, WriteOptions{
			Merge:               true,
			BaseVersionOverride: &newBase,
		})
	}
}
