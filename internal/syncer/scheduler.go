package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
)

// ApplyVersionedWrite persists an edit optimistically: it registers a
// pending write based on the ledger's current version (or an explicit
// override during retries), wraps the payload in a version envelope,
// and issues the write. On failure the optimistic state is rolled back,
// provided no newer write superseded it, and the error is returned.
func (c *Coordinator) ApplyVersionedWrite(ctx context.Context, ref docstore.Ref, localData map[string]any, opts WriteOptions) error {
	path := ref.Path()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	baseVersion := c.versions[path]
	if opts.BaseVersionOverride != nil {
		baseVersion = *opts.BaseVersionOverride
	}

	// Deep copy once, before anything captures the payload: tracked
	// state and the retry must not see caller mutations made after
	// this call returns.
	local := cloneData(localData)

	// The retry closure replays this exact write at a caller-chosen
	// base version, so a resolution can re-sequence it after the
	// foreign write that beat it. It holds its own acknowledgment
	// subscription: the original caller's observer is long gone by
	// resolution time, and an unobserved replay would time out.
	retry := func(ctx context.Context, newBase int64) error {
		retryOpts := opts
		retryOpts.Debounce = false
		retryOpts.BaseVersionOverride = &newBase
		unsubscribe := ref.Subscribe(c.ObserveSnapshot, nil)
		defer unsubscribe()
		return c.ApplyVersionedWrite(ctx, ref, local, retryOpts)
	}

	p := c.trackPendingWriteLocked(path, local, baseVersion, retry)
	counter := p.ClientCounter

	persisted := cloneData(local)
	if opts.BuildPersistedData != nil {
		persisted = opts.BuildPersistedData(persisted)
	}
	envelope := buildEnvelope(persisted, baseVersion, counter, c.clientID)
	c.mu.Unlock()

	if err := ref.Set(ctx, envelope, docstore.SetOptions{Merge: opts.Merge}); err != nil {
		// Roll back only if this write is still the active one for the
		// path; a newer write may own the slot by now.
		c.mu.Lock()
		if current := c.pending[path]; current != nil && current.ClientCounter == counter {
			c.clearPendingWriteLocked(path)
			delete(c.conflicts, path)
			c.finishMutationLocked()
		} else {
			c.mu.Unlock()
		}
		return fmt.Errorf("versioned write %s: %w", path, err)
	}
	return nil
}

// ScheduleVersionedWrite persists an edit, coalescing rapid successive
// writes to the same document into one trailing write when
// opts.Debounce is set. All callers blocked on a coalesced write settle
// together with the single write's outcome.
func (c *Coordinator) ScheduleVersionedWrite(ctx context.Context, ref docstore.Ref, localData map[string]any, opts WriteOptions) error {
	if !opts.Debounce {
		return c.ApplyVersionedWrite(ctx, ref, localData, opts)
	}
	path := ref.Path()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e, ok := c.debounced[path]
	if ok {
		// Replace the buffered payload and restart the quiet period.
		e.ref = ref
		e.data = cloneData(localData)
		e.opts = opts
		e.timer.Reset(c.opts.DebounceInterval)
	} else {
		e = &debounceEntry{
			ref:  ref,
			data: cloneData(localData),
			opts: opts,
			done: make(chan struct{}),
		}
		e.timer = time.AfterFunc(c.opts.DebounceInterval, func() {
			c.flushDebounced(path)
		})
		c.debounced[path] = e
	}
	c.mu.Unlock()

	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// debounceEntry buffers the latest payload for a document while its
// quiet period runs. At most one entry is armed per path.
type debounceEntry struct {
	ref   docstore.Ref
	data  map[string]any
	opts  WriteOptions
	timer *time.Timer
	done  chan struct{}
	err   error
	once  sync.Once
}

func (e *debounceEntry) settle(err error) {
	e.once.Do(func() {
		e.err = err
		close(e.done)
	})
}

func (c *Coordinator) flushDebounced(path string) {
	c.mu.Lock()
	e := c.debounced[path]
	if e == nil {
		c.mu.Unlock()
		return
	}
	delete(c.debounced, path)
	c.mu.Unlock()

	opts := e.opts
	opts.Debounce = false
	e.settle(c.ApplyVersionedWrite(context.Background(), e.ref, e.data, opts))
}
