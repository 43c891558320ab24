package data

import (
	"context"
	"fmt"

	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

func groceryItemsOf(snaps []docstore.Snapshot) ([]models.GroceryItem, error) {
	items := make([]models.GroceryItem, 0, len(snaps))
	for _, snap := range snaps {
		var item models.GroceryItem
		if err := decodeSnapshot(snap, &item); err != nil {
			return nil, err
		}
		item.ID = docID(snap.Path)
		items = append(items, item)
	}
	return items, nil
}

// AddGroceryItem adds a validated item to the household grocery list
// and returns its id.
func (s *Store) AddGroceryItem(ctx context.Context, householdID string, input validate.GroceryItem) (string, error) {
	item, err := validate.GroceryInput(input)
	if err != nil {
		return "", err
	}

	ref := s.groceryItems(householdID).NewDoc()
	now := nowStamp()
	err = s.versionedWrite(ctx, ref, map[string]any{
		"name":       item.Name,
		"quantity":   item.Quantity,
		"notes":      item.Notes,
		"locationId": item.LocationID,
		"personTag":  item.PersonTag,
		"mealDayId":  item.MealDayID,
		"completed":  item.Completed,
		"createdBy":  s.user.UID,
		"updatedBy":  s.user.UID,
		"createdAt":  now,
		"updatedAt":  now,
	}, syncer.WriteOptions{
		BuildPersistedData: stampServerTime("createdAt", "updatedAt"),
	})
	if err != nil {
		return "", err
	}

	if err := s.addActivity(ctx, householdID, models.ActivityGrocery, fmt.Sprintf("Added %s to grocery list.", item.Name)); err != nil {
		return "", err
	}
	return docID(ref.Path()), nil
}

// SetGroceryItemCompleted marks an item done or reopens it.
func (s *Store) SetGroceryItemCompleted(ctx context.Context, householdID, itemID string, completed bool) error {
	ref := s.groceryItems(householdID).Doc(itemID)
	err := s.versionedWrite(ctx, ref, map[string]any{
		"completed": completed,
		"updatedAt": nowStamp(),
		"updatedBy": s.user.UID,
	}, syncer.WriteOptions{
		Merge:              true,
		BuildPersistedData: stampServerTime("updatedAt"),
	})
	if err != nil {
		return err
	}

	verb := "Reopened"
	if completed {
		verb = "Completed"
	}
	return s.addActivity(ctx, householdID, models.ActivityGrocery, verb+" a grocery item.")
}

// DeleteGroceryItem removes an item and drops any optimistic sync state
// tracked for its document.
func (s *Store) DeleteGroceryItem(ctx context.Context, householdID, itemID string) error {
	ref := s.groceryItems(householdID).Doc(itemID)
	if err := ref.Delete(ctx); err != nil {
		return err
	}
	s.coord.ClearSyncState(ref.Path())
	return s.addActivity(ctx, householdID, models.ActivityGrocery, "Removed a grocery item.")
}

// ListGroceryItems returns the household grocery list.
func (s *Store) ListGroceryItems(ctx context.Context, householdID string) ([]models.GroceryItem, error) {
	snaps, err := s.groceryItems(householdID).List(ctx)
	if err != nil {
		return nil, err
	}
	return groceryItemsOf(snaps)
}

// ListenGroceryItems subscribes to the grocery list until the returned
// disposer is called.
func (s *Store) ListenGroceryItems(householdID string, callback func([]models.GroceryItem), onError docstore.ErrorHandler) func() {
	return s.groceryItems(householdID).Subscribe(func(snaps []docstore.Snapshot) {
		for _, snap := range snaps {
			s.coord.ObserveSnapshot(snap, docstore.Metadata{})
		}
		items, err := groceryItemsOf(snaps)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(items)
	}, onError)
}
