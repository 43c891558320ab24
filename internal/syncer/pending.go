package syncer

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
)

// trackPendingWriteLocked registers a new in-flight optimistic write
// for path, superseding any previous one. The local payload is deep
// copied, the next client counter is allocated and persisted
// immediately, and the write-timeout timer is armed.
func (c *Coordinator) trackPendingWriteLocked(path string, localData map[string]any, baseVersion int64, retry retryFunc) *PendingWrite {
	c.clearPendingWriteLocked(path)

	c.counter++
	counter := c.counter
	if err := c.state.Set(localstate.KeyClientCounter, strconv.FormatInt(counter, 10)); err != nil {
		slog.Warn("sync: persist client counter", "err", err)
	}

	p := &PendingWrite{
		Path:          path,
		LocalData:     cloneData(localData),
		BaseVersion:   baseVersion,
		ClientCounter: counter,
		QueuedAt:      time.Now().UTC(),
		retry:         retry,
	}
	p.timeout = time.AfterFunc(c.opts.WriteTimeout, func() {
		c.onWriteTimeout(path, counter)
	})
	c.pending[path] = p
	return p
}

// clearPendingWriteLocked cancels the timer and removes the entry.
// Safe to call when no pending write exists.
func (c *Coordinator) clearPendingWriteLocked(path string) {
	p, ok := c.pending[path]
	if !ok {
		return
	}
	if p.timeout != nil {
		p.timeout.Stop()
	}
	delete(c.pending, path)
}

// onWriteTimeout escalates an unacknowledged write to a conflict. The
// counter check skips timeouts belonging to superseded writes: a newer
// write for the same path owns the slot now.
func (c *Coordinator) onWriteTimeout(path string, counter int64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	p := c.pending[path]
	if p == nil || p.ClientCounter != counter {
		c.mu.Unlock()
		return
	}

	delete(c.pending, path)

	// The server state is genuinely unknown at timeout: synthesize the
	// remote side from the ledger and leave its data empty.
	remote := ConflictRemote{
		Meta:       Meta{Version: c.versions[path]},
		ObservedAt: time.Now().UTC(),
	}
	c.trackConflictLocked(path, p, remote, ReasonWriteTimeout)
	slog.Warn("sync: write timed out", "path", path, "counter", counter)
	c.finishMutationLocked()
}
