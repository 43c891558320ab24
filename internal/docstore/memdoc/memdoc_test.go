package memdoc

import (
	"context"
	"errors"
	"testing"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
)

func TestGetSetDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := store.Doc("households/h1")

	if _, err := ref.Get(ctx); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("get missing: got %v, want ErrNotFound", err)
	}

	if err := ref.Set(ctx, map[string]any{"name": "Home"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.Data["name"] != "Home" {
		t.Fatalf("get data: %v", snap.Data)
	}

	if err := ref.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ref.Get(ctx); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
}

func TestMergeSet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := store.Doc("households/h1")

	if err := ref.Set(ctx, map[string]any{"name": "Home", "inviteCode": "AB12"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ref.Set(ctx, map[string]any{"name": "Base"}, docstore.SetOptions{Merge: true}); err != nil {
		t.Fatalf("merge set: %v", err)
	}

	snap, _ := ref.Get(ctx)
	if snap.Data["name"] != "Base" || snap.Data["inviteCode"] != "AB12" {
		t.Fatalf("merge result: %v", snap.Data)
	}
}

func TestSubscribe_EchoThenCommit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := store.Doc("households/h1")

	type delivery struct {
		exists  bool
		pending bool
	}
	var got []delivery
	unsubscribe := ref.Subscribe(func(snap docstore.Snapshot, meta docstore.Metadata) {
		got = append(got, delivery{snap.Exists, meta.HasPendingWrites})
	}, nil)
	defer unsubscribe()

	// Initial replay for a missing document.
	if len(got) != 1 || got[0].exists {
		t.Fatalf("initial delivery: %+v", got)
	}

	if err := ref.Set(ctx, map[string]any{"name": "Home"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Echo with pending writes, then the committed snapshot.
	if len(got) != 3 {
		t.Fatalf("deliveries: got %d, want 3 (%+v)", len(got), got)
	}
	if !got[1].pending || got[2].pending {
		t.Fatalf("echo ordering: %+v", got)
	}

	unsubscribe()
	if err := ref.Set(ctx, map[string]any{"name": "Again"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set after unsubscribe: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("delivery after unsubscribe: %+v", got)
	}
}

func TestCollection_ListAndSubscribe(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	col := store.Collection("households/h1/groceryItems")

	var lastList []docstore.Snapshot
	unsubscribe := col.Subscribe(func(snaps []docstore.Snapshot) {
		lastList = snaps
	}, nil)
	defer unsubscribe()

	if len(lastList) != 0 {
		t.Fatalf("initial list: %v", lastList)
	}

	if err := col.Doc("item1").Set(ctx, map[string]any{"name": "Milk"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := col.Doc("item2").Set(ctx, map[string]any{"name": "Bread"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if len(lastList) != 2 {
		t.Fatalf("list after writes: got %d docs", len(lastList))
	}

	// Nested subcollection docs do not leak into the parent listing.
	if err := store.Doc("households/h1/groceryItems/item1/sub/x").Set(ctx, map[string]any{"a": 1}, docstore.SetOptions{}); err != nil {
		t.Fatalf("nested set: %v", err)
	}
	snaps, err := col.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("list with nested doc: got %d docs", len(snaps))
	}
}

func TestFailWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := store.Doc("households/h1")

	boom := errors.New("store unavailable")
	store.FailWrites(boom)
	if err := ref.Set(ctx, map[string]any{"name": "Home"}, docstore.SetOptions{}); !errors.Is(err, boom) {
		t.Fatalf("failed set: got %v", err)
	}
	if _, err := ref.Get(ctx); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatal("failed write should not mutate state")
	}

	store.FailWrites(nil)
	if err := ref.Set(ctx, map[string]any{"name": "Home"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set after clearing failure: %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := store.Doc("households/h1")

	if err := ref.Set(ctx, map[string]any{"name": "Home"}, docstore.SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap, _ := ref.Get(ctx)
	snap.Data["name"] = "Tampered"

	again, _ := ref.Get(ctx)
	if again.Data["name"] != "Home" {
		t.Fatalf("store state aliased by snapshot: %v", again.Data)
	}
}
