// Package data is the household data layer. Every entity write goes
// through the sync coordinator as a versioned write, so concurrent
// edits from other household members surface as conflicts instead of
// silent overwrites. Reads come straight from the document store.
package data

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

const householdsRoot = "households"

// inviteAlphabet omits lookalike characters (I, O, 0, 1).
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Store is the household data layer over a document store and a sync
// coordinator, acting as one signed-in user.
type Store struct {
	docs  docstore.Store
	coord *syncer.Coordinator
	user  models.User
}

// NewStore builds a data layer acting as user.
func NewStore(docs docstore.Store, coord *syncer.Coordinator, user models.User) *Store {
	return &Store{docs: docs, coord: coord, user: user}
}

// User returns the acting user.
func (s *Store) User() models.User {
	return s.user
}

// Coordinator exposes the underlying sync coordinator for conflict
// inspection and resolution.
func (s *Store) Coordinator() *syncer.Coordinator {
	return s.coord
}

// GenerateInviteCode returns a random invite code of length characters.
func GenerateInviteCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	code := make([]byte, length)
	for i, b := range buf {
		code[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(code), nil
}

// Collection and document paths.

func (s *Store) households() docstore.Collection {
	return s.docs.Collection(householdsRoot)
}

func (s *Store) householdRef(householdID string) docstore.Ref {
	return s.docs.Doc(householdsRoot + "/" + householdID)
}

func (s *Store) members(householdID string) docstore.Collection {
	return s.docs.Collection(householdsRoot + "/" + householdID + "/members")
}

func (s *Store) weekRef(householdID, weekID string) docstore.Ref {
	return s.docs.Doc(householdsRoot + "/" + householdID + "/weeks/" + weekID)
}

func (s *Store) days(householdID, weekID string) docstore.Collection {
	return s.docs.Collection(householdsRoot + "/" + householdID + "/weeks/" + weekID + "/days")
}

func (s *Store) groceryItems(householdID string) docstore.Collection {
	return s.docs.Collection(householdsRoot + "/" + householdID + "/groceryItems")
}

func (s *Store) locations(householdID string) docstore.Collection {
	return s.docs.Collection(householdsRoot + "/" + householdID + "/locations")
}

func (s *Store) activity(householdID string) docstore.Collection {
	return s.docs.Collection(householdsRoot + "/" + householdID + "/activity")
}

// docID returns the last path segment of a snapshot path.
func docID(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// stampServerTime is a BuildPersistedData hook swapping the named
// fields for server-timestamp sentinels in the persisted payload. The
// locally tracked copy keeps its concrete values, so optimistic state
// never carries unresolved placeholders.
func stampServerTime(fields ...string) func(map[string]any) map[string]any {
	return func(persisted map[string]any) map[string]any {
		for _, field := range fields {
			if _, ok := persisted[field]; ok {
				persisted[field] = docstore.ServerTimestamp()
			}
		}
		return persisted
	}
}

// versionedWrite issues one coordinator write with an acknowledgment
// listener held open for its duration, so one-shot callers get their
// own-write confirmation before returning.
func (s *Store) versionedWrite(ctx context.Context, ref docstore.Ref, localData map[string]any, opts syncer.WriteOptions) error {
	unsubscribe := ref.Subscribe(func(snap docstore.Snapshot, meta docstore.Metadata) {
		s.coord.ObserveSnapshot(snap, meta)
	}, nil)
	defer unsubscribe()

	return s.coord.ScheduleVersionedWrite(ctx, ref, localData, opts)
}

// decodeSnapshot unmarshals a snapshot's application payload into out
// via a JSON round-trip, tolerating the value shapes both live maps and
// stored JSON produce.
func decodeSnapshot(snap docstore.Snapshot, out any) error {
	payload := syncer.DocumentData(snap.Data)
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", snap.Path, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("decode document %q: %w", snap.Path, err)
	}
	return nil
}

func nowStamp() string {
	return docstore.FormatTime(time.Now().UTC())
}
