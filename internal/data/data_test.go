package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore/memdoc"
	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

var (
	alice = models.User{UID: "uid_alice", Email: "alice@example.com", DisplayName: "Alice"}
	bob   = models.User{UID: "uid_bob", Email: "bob@example.com", DisplayName: "Bob"}
)

func newTestStore(t *testing.T, docs *memdoc.Store, user models.User) *Store {
	t.Helper()
	state, err := localstate.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("initialize state: %v", err)
	}
	t.Cleanup(func() { state.Close() })

	coord, err := syncer.New(state, syncer.Options{DebounceInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	t.Cleanup(coord.Close)

	return NewStore(docs, coord, user)
}

func createHousehold(t *testing.T, s *Store, name string) string {
	t.Helper()
	id, err := s.CreateHousehold(context.Background(), name)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return id
}

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{6}$`)
	seen := make(map[string]bool)
	for range 50 {
		code, err := GenerateInviteCode(6)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q outside alphabet", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes are not random")
	}
}

func TestCreateHousehold(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "  Marmot House  ")

	household, err := s.GetHousehold(ctx, id)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if household.Name != "Marmot House" {
		t.Fatalf("name: got %q, want %q", household.Name, "Marmot House")
	}
	if household.OwnerUID != alice.UID {
		t.Fatalf("owner: got %q, want %q", household.OwnerUID, alice.UID)
	}
	if len(household.MemberUIDs) != 1 || household.MemberUIDs[0] != alice.UID {
		t.Fatalf("memberUids: %v", household.MemberUIDs)
	}
	if len(household.InviteCode) != 6 {
		t.Fatalf("invite code: %q", household.InviteCode)
	}

	members, err := s.ListMembers(ctx, id)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].Role != models.RoleOwner || members[0].UID != alice.UID {
		t.Fatalf("members: %+v", members)
	}

	entries, err := s.ListActivity(ctx, id, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != models.ActivityHousehold {
		t.Fatalf("activity: %+v", entries)
	}
}

func TestCreateHouseholdRejectsBadName(t *testing.T) {
	s := newTestStore(t, memdoc.NewStore(), alice)
	if _, err := s.CreateHousehold(context.Background(), "   "); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestJoinHousehold(t *testing.T) {
	docs := memdoc.NewStore()
	owner := newTestStore(t, docs, alice)
	joiner := newTestStore(t, docs, bob)
	ctx := context.Background()

	id := createHousehold(t, owner, "Marmot House")
	household, err := owner.GetHousehold(ctx, id)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}

	if err := joiner.JoinHousehold(ctx, id, household.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	joined, err := joiner.GetHousehold(ctx, id)
	if err != nil {
		t.Fatalf("get after join: %v", err)
	}
	if len(joined.MemberUIDs) != 2 {
		t.Fatalf("memberUids after join: %v", joined.MemberUIDs)
	}

	members, err := joiner.ListMembers(ctx, id)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members: %+v", members)
	}
	// Owner sorts first regardless of name order.
	if members[0].UID != alice.UID || members[1].UID != bob.UID {
		t.Fatalf("member order: %q then %q", members[0].UID, members[1].UID)
	}

	households, err := joiner.ListHouseholds(ctx)
	if err != nil {
		t.Fatalf("list households: %v", err)
	}
	if len(households) != 1 || households[0].ID != id {
		t.Fatalf("joiner households: %+v", households)
	}
}

func TestJoinHouseholdWrongCode(t *testing.T) {
	docs := memdoc.NewStore()
	owner := newTestStore(t, docs, alice)
	joiner := newTestStore(t, docs, bob)
	ctx := context.Background()

	id := createHousehold(t, owner, "Marmot House")

	err := joiner.JoinHousehold(ctx, id, "ZZZZ99")
	if !errors.Is(err, ErrInviteCodeMismatch) {
		t.Fatalf("got %v, want %v", err, ErrInviteCodeMismatch)
	}
}

func TestJoinHouseholdNotFound(t *testing.T) {
	joiner := newTestStore(t, memdoc.NewStore(), bob)
	err := joiner.JoinHousehold(context.Background(), "missing", "ABCDEF")
	if !errors.Is(err, ErrHouseholdNotFound) {
		t.Fatalf("got %v, want %v", err, ErrHouseholdNotFound)
	}
}

func TestSaveMealForDay(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "Marmot House")
	const weekID = "2026-08-24"

	if err := s.SaveMealForDay(ctx, id, weekID, "wednesday", "Tacos", alice.UID); err != nil {
		t.Fatalf("save meal: %v", err)
	}

	week, err := s.WeekPlan(ctx, id, weekID)
	if err != nil {
		t.Fatalf("week plan: %v", err)
	}
	day := week["wednesday"]
	if day.MealName != "Tacos" || day.CookUID != alice.UID {
		t.Fatalf("wednesday: %+v", day)
	}

	// Clearing writes an empty meal name.
	if err := s.SaveMealForDay(ctx, id, weekID, "wednesday", "", ""); err != nil {
		t.Fatalf("clear meal: %v", err)
	}
	week, err = s.WeekPlan(ctx, id, weekID)
	if err != nil {
		t.Fatalf("week plan: %v", err)
	}
	if week["wednesday"].MealName != "" {
		t.Fatalf("wednesday not cleared: %+v", week["wednesday"])
	}
}

func TestSaveMealForDayRejectsBadDay(t *testing.T) {
	s := newTestStore(t, memdoc.NewStore(), alice)
	err := s.SaveMealForDay(context.Background(), "h1", "2026-08-24", "someday", "Tacos", "")
	if err == nil {
		t.Fatal("expected invalid day error")
	}
}

func TestGroceryItemLifecycle(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "Marmot House")

	itemID, err := s.AddGroceryItem(ctx, id, validate.GroceryItem{Name: "  Milk ", Quantity: "2"})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	items, err := s.ListGroceryItems(ctx, id)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items: %+v", items)
	}
	if items[0].Name != "Milk" || items[0].Quantity != "2" || items[0].Completed {
		t.Fatalf("item: %+v", items[0])
	}
	if items[0].CreatedBy != alice.UID || items[0].CreatedAt == nil {
		t.Fatalf("stamps: %+v", items[0])
	}

	if err := s.SetGroceryItemCompleted(ctx, id, itemID, true); err != nil {
		t.Fatalf("complete item: %v", err)
	}
	items, _ = s.ListGroceryItems(ctx, id)
	if !items[0].Completed {
		t.Fatalf("item not completed: %+v", items[0])
	}

	if err := s.DeleteGroceryItem(ctx, id, itemID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	items, _ = s.ListGroceryItems(ctx, id)
	if len(items) != 0 {
		t.Fatalf("items after delete: %+v", items)
	}

	// No stray sync state for the deleted document.
	if state := s.Coordinator().SyncConflictState(); state.PendingWrites != 0 || state.Count != 0 {
		t.Fatalf("sync state after delete: %+v", state)
	}
}

func TestAddLocationRejectsDuplicates(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "Marmot House")

	if err := s.AddLocation(ctx, id, "Costco"); err != nil {
		t.Fatalf("add location: %v", err)
	}
	err := s.AddLocation(ctx, id, "  costco ")
	if !errors.Is(err, ErrLocationExists) {
		t.Fatalf("got %v, want %v", err, ErrLocationExists)
	}

	locations, err := s.ListLocations(ctx, id)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 1 || locations[0].Name != "Costco" {
		t.Fatalf("locations: %+v", locations)
	}
}

func TestActivityFeedNewestFirst(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "Marmot House")
	if err := s.AddLocation(ctx, id, "Costco"); err != nil {
		t.Fatalf("add location: %v", err)
	}
	if _, err := s.AddGroceryItem(ctx, id, validate.GroceryItem{Name: "Milk"}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	entries, err := s.ListActivity(ctx, id, 2)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: %+v", entries)
	}
	if entries[0].Type != models.ActivityGrocery || entries[1].Type != models.ActivityLocation {
		t.Fatalf("order: %q then %q", entries[0].Type, entries[1].Type)
	}
}

func TestListenGroceryItems(t *testing.T) {
	docs := memdoc.NewStore()
	s := newTestStore(t, docs, alice)
	ctx := context.Background()

	id := createHousehold(t, s, "Marmot House")

	var lists [][]models.GroceryItem
	unsubscribe := s.ListenGroceryItems(id, func(items []models.GroceryItem) {
		lists = append(lists, items)
	}, nil)
	defer unsubscribe()

	if _, err := s.AddGroceryItem(ctx, id, validate.GroceryItem{Name: "Milk"}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(lists) < 2 {
		t.Fatalf("deliveries: %d", len(lists))
	}
	last := lists[len(lists)-1]
	if len(last) != 1 || last[0].Name != "Milk" {
		t.Fatalf("latest list: %+v", last)
	}
}
