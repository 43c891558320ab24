package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/evanklingensmith/hungrymarmots/internal/dates"
	"github.com/evanklingensmith/hungrymarmots/internal/docstore"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/plan"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

// SaveMealForDay records the planned meal for one day of a week. An
// empty meal name clears the day. Writes are debounced: rapid edits to
// the same day coalesce into one trailing store write.
func (s *Store) SaveMealForDay(ctx context.Context, householdID, weekID, dayID, mealName, cookUID string) error {
	if !dates.IsDayID(dayID) {
		return errors.New("invalid day id")
	}
	meal, err := validate.MealInput(mealName, cookUID)
	if err != nil {
		return err
	}

	now := nowStamp()
	err = s.versionedWrite(ctx, s.weekRef(householdID, weekID), map[string]any{
		"weekStartIso": weekID,
		"updatedAt":    now,
		"updatedBy":    s.user.UID,
	}, syncer.WriteOptions{
		Merge:              true,
		Debounce:           true,
		BuildPersistedData: stampServerTime("updatedAt"),
	})
	if err != nil {
		return err
	}

	dayRef := s.days(householdID, weekID).Doc(dayID)
	err = s.versionedWrite(ctx, dayRef, map[string]any{
		"mealName":  meal.MealName,
		"cookUid":   meal.CookUID,
		"updatedAt": now,
		"updatedBy": s.user.UID,
	}, syncer.WriteOptions{
		Merge:              true,
		Debounce:           true,
		BuildPersistedData: stampServerTime("updatedAt"),
	})
	if err != nil {
		return err
	}

	readable := meal.MealName
	if readable == "" {
		readable = "Cleared meal"
	}
	return s.addActivity(ctx, householdID, models.ActivityMeal, fmt.Sprintf("%s (%s)", readable, dayID))
}

func dayPlansOf(snaps []docstore.Snapshot) ([]models.DayPlan, error) {
	days := make([]models.DayPlan, 0, len(snaps))
	for _, snap := range snaps {
		var day models.DayPlan
		if err := decodeSnapshot(snap, &day); err != nil {
			return nil, err
		}
		day.DayID = docID(snap.Path)
		days = append(days, day)
	}
	return days, nil
}

// WeekPlan returns the merged plan for one week, with empty entries for
// unplanned days.
func (s *Store) WeekPlan(ctx context.Context, householdID, weekID string) (plan.WeekPlan, error) {
	snaps, err := s.days(householdID, weekID).List(ctx)
	if err != nil {
		return nil, err
	}
	days, err := dayPlansOf(snaps)
	if err != nil {
		return nil, err
	}
	return plan.MergeDayDocs(days), nil
}

// ListenWeekDays subscribes to the day documents of one week until the
// returned disposer is called.
func (s *Store) ListenWeekDays(householdID, weekID string, callback func(plan.WeekPlan), onError docstore.ErrorHandler) func() {
	return s.days(householdID, weekID).Subscribe(func(snaps []docstore.Snapshot) {
		for _, snap := range snaps {
			s.coord.ObserveSnapshot(snap, docstore.Metadata{})
		}
		days, err := dayPlansOf(snaps)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		callback(plan.MergeDayDocs(days))
	}, onError)
}
