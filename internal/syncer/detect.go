package syncer

import "github.com/evanklingensmith/hungrymarmots/internal/docstore"

// shouldTrackConflict decides whether an incoming remote snapshot
// represents a genuine conflicting edit by another writer. Evaluated
// once per snapshot per document, after own-write acknowledgment.
//
// The check order matters: 1-3 are cheap short-circuits, 5 is the
// substantive race test. Version equality is not a conflict: a write
// based on the still-current version is safe.
func shouldTrackConflict(clientID string, p *PendingWrite, obs observedMeta, docMeta docstore.Metadata) bool {
	// 1. Nothing optimistic in flight for this path.
	if p == nil {
		return false
	}
	// 2. The store is echoing back an unconfirmed local write; not
	// conclusive yet.
	if docMeta.HasPendingWrites {
		return false
	}
	// 3. Our own write, or an untagged legacy write. Not a third-party
	// conflict; acknowledgment is handled before this runs.
	if obs.meta.UpdatedBy == "" || obs.meta.UpdatedBy == clientID {
		return false
	}
	// 4. Unverifiable version: cannot prove safety, treat as conflict.
	if !obs.versionOK {
		return true
	}
	// 5. A foreign write landed on top of the version this client's
	// pending write assumed as its base.
	return obs.meta.Version > p.BaseVersion
}
