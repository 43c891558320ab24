package docstore

import (
	"testing"
	"time"
)

func TestResolveWrite_MergeAndReplace(t *testing.T) {
	existing := map[string]any{"name": "Milk", "notes": "low fat"}
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	merged := ResolveWrite(existing, map[string]any{"name": "Bread"}, true, now)
	if merged["name"] != "Bread" || merged["notes"] != "low fat" {
		t.Fatalf("merge: got %v", merged)
	}

	replaced := ResolveWrite(existing, map[string]any{"name": "Bread"}, false, now)
	if _, ok := replaced["notes"]; ok {
		t.Fatalf("replace kept old field: %v", replaced)
	}

	// Inputs must not be mutated.
	if existing["name"] != "Milk" {
		t.Fatalf("existing mutated: %v", existing)
	}
}

func TestResolveWrite_ServerTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	out := ResolveWrite(nil, map[string]any{"updatedAt": ServerTimestamp()}, false, now)

	ts, ok := ParseTime(out["updatedAt"])
	if !ok {
		t.Fatalf("updatedAt not a timestamp: %v", out["updatedAt"])
	}
	if !ts.Equal(now) {
		t.Fatalf("timestamp: got %v, want %v", ts, now)
	}
}

func TestResolveWrite_Increment(t *testing.T) {
	now := time.Now()

	first := ResolveWrite(nil, map[string]any{"version": Increment(1)}, true, now)
	if v, _ := AsInt64(first["version"]); v != 1 {
		t.Fatalf("first increment: got %v, want 1", first["version"])
	}

	second := ResolveWrite(first, map[string]any{"version": Increment(1)}, true, now)
	if v, _ := AsInt64(second["version"]); v != 2 {
		t.Fatalf("second increment: got %v, want 2", second["version"])
	}

	// Non-numeric existing values count as zero.
	weird := ResolveWrite(map[string]any{"version": "x"}, map[string]any{"version": Increment(5)}, true, now)
	if v, _ := AsInt64(weird["version"]); v != 5 {
		t.Fatalf("increment over junk: got %v, want 5", weird["version"])
	}
}

func TestResolveWrite_NestedMaps(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	existing := map[string]any{
		"meta": map[string]any{"version": int64(3), "updatedBy": "a"},
	}
	out := ResolveWrite(existing, map[string]any{
		"meta": map[string]any{
			"version":   Increment(1),
			"updatedAt": ServerTimestamp(),
		},
	}, true, now)

	meta, ok := out["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta: got %T", out["meta"])
	}
	if v, _ := AsInt64(meta["version"]); v != 4 {
		t.Fatalf("nested increment: got %v, want 4", meta["version"])
	}
	if meta["updatedBy"] != "a" {
		t.Fatalf("merge dropped sibling: %v", meta)
	}
	if _, ok := ParseTime(meta["updatedAt"]); !ok {
		t.Fatalf("nested timestamp unresolved: %v", meta["updatedAt"])
	}
}

func TestParseTime(t *testing.T) {
	stamp := time.Date(2026, 2, 9, 12, 30, 0, 500, time.UTC)
	got, ok := ParseTime(FormatTime(stamp))
	if !ok {
		t.Fatal("round-trip not parsed")
	}
	if !got.Equal(stamp) {
		t.Fatalf("round-trip: got %v, want %v", got, stamp)
	}

	for _, in := range []any{nil, 42, "yesterday", ""} {
		if _, ok := ParseTime(in); ok {
			t.Fatalf("ParseTime(%v): parsed, want rejection", in)
		}
	}
}

func TestAsInt64(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int64(7), 7, true},
		{7, 7, true},
		{float64(7), 7, true},
		{7.5, 0, false},
		{"7", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := AsInt64(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("AsInt64(%v): got (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
