package syncer

// The version ledger records, per document path, the highest version
// this client has observed. It only ever moves forward: stale or
// out-of-order snapshots never regress it.

// KnownVersion returns the last observed version for path, or 0 when
// the path has never been observed (legacy and unborn documents).
func (c *Coordinator) KnownVersion(path string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[path]
}

// RememberVersion records an observed version for path, monotonically.
func (c *Coordinator) RememberVersion(path string, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rememberVersionLocked(path, version)
}

func (c *Coordinator) rememberVersionLocked(path string, version int64) {
	if version < 0 {
		return
	}
	if version > c.versions[path] {
		c.versions[path] = version
	}
}
