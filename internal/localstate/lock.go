package localstate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileName   = "state.lock"
	lockTimeout    = 500 * time.Millisecond
	initialBackoff = 5 * time.Millisecond
	maxBackoff     = 50 * time.Millisecond
)

// writeLocker serializes state mutations across processes using an OS
// file lock. The lock is released automatically if the process dies.
type writeLocker struct {
	lockPath string
	lockFile *os.File
}

func newWriteLocker(dir string) *writeLocker {
	return &writeLocker{lockPath: filepath.Join(dir, lockFileName)}
}

// acquire polls for an exclusive lock until timeout, backing off
// exponentially between attempts.
func (l *writeLocker) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	l.lockFile = f

	deadline := time.Now().Add(timeout)
	backoff := initialBackoff
	for {
		if err := l.tryLock(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			l.lockFile.Close()
			l.lockFile = nil
			return fmt.Errorf("state write lock timeout after %v", timeout)
		}
		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (l *writeLocker) release() {
	if l.lockFile == nil {
		return
	}
	l.unlock()
	l.lockFile.Close()
	l.lockFile = nil
}
