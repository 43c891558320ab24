package syncer

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDebounceCoalescesRapidWrites(t *testing.T) {
	c, store := setupCoordinator(t, Options{DebounceInterval: 150 * time.Millisecond})
	ref := store.Doc(testPath)
	wire(t, c, ref)
	ctx := context.Background()

	names := []string{"Milk", "Bread", "Eggs"}
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.ScheduleVersionedWrite(ctx, ref, map[string]any{"name": name}, WriteOptions{Merge: true, Debounce: true})
		}()
		// Keep the schedules inside one quiet period, last-write-wins.
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	meta, ok := DocumentMeta(snap.Data)
	if !ok {
		t.Fatal("document has no meta")
	}
	// One coalesced write, not three.
	if meta.Version != 1 {
		t.Fatalf("version: got %d, want 1", meta.Version)
	}
	if got := DocumentData(snap.Data)["name"]; got != "Eggs" {
		t.Fatalf("coalesced payload: got %v, want Eggs", got)
	}
}

func TestDebounceSettlesAllCallersWithWriteError(t *testing.T) {
	c, store := setupCoordinator(t, Options{DebounceInterval: 50 * time.Millisecond})
	ref := store.Doc(testPath)
	store.FailWrites(context.DeadlineExceeded)
	ctx := context.Background()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.ScheduleVersionedWrite(ctx, ref, map[string]any{"name": "Milk"}, WriteOptions{Merge: true, Debounce: true})
		}()
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			t.Fatalf("caller %d: got nil, want write error", i)
		}
	}
}

func TestDebounceCallerRespectsContext(t *testing.T) {
	c, store := setupCoordinator(t, Options{DebounceInterval: time.Minute})
	ref := store.Doc(testPath)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.ScheduleVersionedWrite(ctx, ref, map[string]any{"name": "Milk"}, WriteOptions{Merge: true, Debounce: true})
	if err != context.DeadlineExceeded {
		t.Fatalf("got %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestScheduleWithoutDebounceWritesImmediately(t *testing.T) {
	c, store := setupCoordinator(t, Options{DebounceInterval: time.Minute})
	ref := store.Doc(testPath)
	wire(t, c, ref)
	ctx := context.Background()

	if err := c.ScheduleVersionedWrite(ctx, ref, map[string]any{"name": "Milk"}, WriteOptions{Merge: true}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !snap.Exists {
		t.Fatal("write did not land immediately")
	}
}

func TestCloseSettlesPendingDebounce(t *testing.T) {
	c, store := setupCoordinator(t, Options{DebounceInterval: time.Minute})
	ref := store.Doc(testPath)

	done := make(chan error, 1)
	go func() {
		done <- c.ScheduleVersionedWrite(context.Background(), ref, map[string]any{"name": "Milk"}, WriteOptions{Merge: true, Debounce: true})
	}()

	// Give the caller time to arm the debounce entry.
	time.Sleep(30 * time.Millisecond)
	c.Close()

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Fatalf("got %v, want %v", err, ErrClosed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced caller still blocked after Close")
	}
}
