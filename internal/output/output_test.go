package output

import (
	"strings"
	"testing"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/plan"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

func TestFormatHousehold(t *testing.T) {
	line := FormatHousehold(models.Household{
		ID:         "hh1",
		Name:       "Marmot House",
		InviteCode: "ABC234",
		MemberUIDs: []string{"a", "b"},
	})
	for _, want := range []string{"Marmot House", "hh1", "2 members", "invite ABC234"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}

	single := FormatHousehold(models.Household{Name: "Solo", MemberUIDs: []string{"a"}})
	if !strings.Contains(single, "1 member") || strings.Contains(single, "1 members") {
		t.Fatalf("singular form: %q", single)
	}
}

func TestFormatGroceryItem(t *testing.T) {
	locations := map[string]string{"loc1": "Costco"}

	open := FormatGroceryItem(models.GroceryItem{
		Name:       "Milk",
		Quantity:   "2",
		LocationID: "loc1",
		PersonTag:  "kids",
		MealDayID:  "monday",
	}, locations)
	for _, want := range []string{"○", "Milk", "2", "@ Costco", "for kids", "monday"} {
		if !strings.Contains(open, want) {
			t.Fatalf("line %q missing %q", open, want)
		}
	}

	done := FormatGroceryItem(models.GroceryItem{Name: "Bread", Completed: true}, nil)
	if strings.Contains(done, "○") {
		t.Fatalf("completed item shows open box: %q", done)
	}
}

func TestFormatWeekPlan(t *testing.T) {
	week := plan.EmptyWeekPlan()
	week["wednesday"] = models.DayPlan{DayID: "wednesday", MealName: "Tacos", CookUID: "uid_a"}

	out := FormatWeekPlan("2026-08-24", week, map[string]string{"uid_a": "Alice"})
	for _, want := range []string{"Week of", "Tacos", "(Alice)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("plan output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got < 7 {
		t.Fatalf("expected a line per day, got %d lines", got)
	}
}

func TestFormatConflict(t *testing.T) {
	out := FormatConflict(syncer.Conflict{
		Path:      "households/h1/groceryItems/item1",
		Reason:    syncer.ReasonRemoteUpdate,
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Local:     syncer.ConflictLocal{Data: map[string]any{"name": "Milk"}},
		Remote: syncer.ConflictRemote{
			Data: map[string]any{"name": "Oat milk"},
			Meta: syncer.Meta{Version: 4, UpdatedBy: "mm_other"},
		},
	})
	for _, want := range []string{"remote-update", "households/h1/groceryItems/item1", "Milk", "Oat milk", "v4", "mm_other"} {
		if !strings.Contains(out, want) {
			t.Fatalf("conflict output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSyncStateNoConflicts(t *testing.T) {
	out := FormatSyncState(syncer.State{ClientID: "mm_abc"})
	if !strings.Contains(out, "No conflicts") {
		t.Fatalf("output: %q", out)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1m ago"},
		{5 * time.Minute, "5m ago"},
		{time.Hour, "1h ago"},
		{26 * time.Hour, "1d ago"},
	}
	for _, tt := range tests {
		got := FormatTimeAgo(time.Now().Add(-tt.age))
		if got != tt.want {
			t.Fatalf("age %v: got %q, want %q", tt.age, got, tt.want)
		}
	}

	old := FormatTimeAgo(time.Now().Add(-30 * 24 * time.Hour))
	if !strings.Contains(old, "-") {
		t.Fatalf("old dates should render as dates: %q", old)
	}
}

func TestSectionHeader(t *testing.T) {
	if got := SectionHeader("members"); got != "\nMEMBERS:\n" {
		t.Fatalf("got %q", got)
	}
}

func TestIndentString(t *testing.T) {
	if got := IndentString("a\nb", 2); got != "  a\n  b" {
		t.Fatalf("got %q", got)
	}
	if got := IndentString("", 2); got != "" {
		t.Fatalf("got %q", got)
	}
}
