// Package plan merges per-day meal documents into a complete week view.
package plan

import (
	"github.com/evanklingensmith/hungrymarmots/internal/dates"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
)

// WeekPlan maps day ids to that day's planned meal. Every day id in
// dates.DayOrder is always present.
type WeekPlan map[string]models.DayPlan

// EmptyWeekPlan returns a plan with a blank entry for each day.
func EmptyWeekPlan() WeekPlan {
	plan := make(WeekPlan, len(dates.DayOrder))
	for _, dayID := range dates.DayOrder {
		plan[dayID] = models.DayPlan{DayID: dayID}
	}
	return plan
}

// MergeDayDocs folds day documents into a complete week plan. Documents
// with unknown day ids are ignored; days without a document stay blank.
func MergeDayDocs(dayDocs []models.DayPlan) WeekPlan {
	merged := EmptyWeekPlan()
	for _, doc := range dayDocs {
		if !dates.IsDayID(doc.DayID) {
			continue
		}
		merged[doc.DayID] = doc
	}
	return merged
}
