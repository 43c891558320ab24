package syncer

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// ResolveSyncConflicts settles every tracked conflict with the chosen
// strategy and returns how many were resolved and how many remain.
// Individual retry failures never propagate: they re-track the conflict
// with reason "retry-failed". Listeners are notified once at the end,
// not per conflict.
func (c *Coordinator) ResolveSyncConflicts(ctx context.Context, strategy Strategy) Resolution {
	if strategy != StrategyLocal {
		strategy = StrategyServer
	}

	c.mu.Lock()
	conflicts := make([]*Conflict, 0, len(c.conflicts))
	for _, conflict := range c.conflicts {
		conflicts = append(conflicts, conflict)
	}
	c.mu.Unlock()
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].CreatedAt.Before(conflicts[j].CreatedAt)
	})

	resolved := 0
	for _, conflict := range conflicts {
		if c.resolveOne(ctx, conflict, strategy) {
			resolved++
		}
	}

	c.mu.Lock()
	remaining := len(c.conflicts)
	c.finishMutationLocked()
	return Resolution{Resolved: resolved, Remaining: remaining}
}

func (c *Coordinator) resolveOne(ctx context.Context, conflict *Conflict, strategy Strategy) bool {
	path := conflict.Path
	remoteVersion := conflict.Remote.Meta.Version

	if strategy == StrategyServer {
		// Accept the remote state: drop the local write and fast-forward
		// the ledger so the next read is consistent with it.
		c.mu.Lock()
		delete(c.conflicts, path)
		c.clearPendingWriteLocked(path)
		c.rememberVersionLocked(path, remoteVersion)
		c.mu.Unlock()
		return true
	}

	retry := conflict.retry
	if retry == nil {
		// Restored from backup; the write closure did not survive the
		// restart. Only the server strategy can settle it.
		slog.Warn("sync: conflict has no retry, keeping", "path", path)
		return false
	}

	c.mu.Lock()
	delete(c.conflicts, path)
	c.clearPendingWriteLocked(path)
	c.mu.Unlock()

	// Replay the local write sequenced after the foreign one.
	if err := retry(ctx, remoteVersion); err != nil {
		slog.Warn("sync: conflict retry failed", "path", path, "err", err)
		c.mu.Lock()
		now := time.Now().UTC()
		failed := *conflict
		failed.Reason = ReasonRetryFailed
		failed.UpdatedAt = now
		c.conflicts[path] = &failed
		c.mu.Unlock()
		return false
	}
	return true
}
