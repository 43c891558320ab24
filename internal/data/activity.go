package data

import (
	"context"
	"sort"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
)

// DefaultActivityLimit bounds activity feeds when the caller does not
// choose a limit.
const DefaultActivityLimit = 15

// addActivity appends a log entry to the household activity feed.
// Entries are immutable appends under fresh ids, so they bypass the
// versioned-write path; nothing can race them.
func (s *Store) addActivity(ctx context.Context, householdID string, kind models.ActivityType, message string) error {
	ref := s.activity(householdID).NewDoc()
	return ref.Set(ctx, map[string]any{
		"actorUid":  s.user.UID,
		"actorName": s.user.Name(),
		"type":      string(kind),
		"message":   message,
		"createdAt": docstore.ServerTimestamp(),
	}, docstore.SetOptions{})
}

func activitiesOf(snaps []docstore.Snapshot, limit int) ([]models.Activity, error) {
	entries := make([]models.Activity, 0, len(snaps))
	for _, snap := range snaps {
		var entry models.Activity
		if err := decodeSnapshot(snap, &entry); err != nil {
			return nil, err
		}
		entry.ID = docID(snap.Path)
		if entry.ActorName == "" {
			entry.ActorName = "Someone"
		}
		if entry.Type == "" {
			entry.Type = models.ActivityInfo
		}
		entries = append(entries, entry)
	}

	// Newest first; entries without a stamp sink to the end.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt == nil || entries[j].CreatedAt == nil {
			return entries[j].CreatedAt == nil && entries[i].CreatedAt != nil
		}
		return entries[i].CreatedAt.After(*entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListActivity returns the newest limit activity entries.
func (s *Store) ListActivity(ctx context.Context, householdID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	snaps, err := s.activity(householdID).List(ctx)
	if err != nil {
		return nil, err
	}
	return activitiesOf(snaps, limit)
}

// ListenActivity subscribes to the activity feed, newest first, until
// the returned disposer is called.
func (s *Store) ListenActivity(householdID string, limit int, callback func([]models.Activity), onError docstore.ErrorHandler) func() {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return s.activity(householdID).Subscribe(func(snaps []docstore.Snapshot) {
		entries, err := activitiesOf(snaps, limit)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(entries)
	}, onError)
}
