// Package dates provides ISO-date helpers for week-based meal planning.
// All arithmetic is done in UTC on YYYY-MM-DD strings so week
// identifiers are stable across timezones.
package dates

import (
	"fmt"
	"regexp"
	"time"
)

// DayOrder lists the planner's day ids, Monday first.
var DayOrder = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// IsDayID reports whether id is one of the seven planner day ids.
func IsDayID(id string) bool {
	for _, day := range DayOrder {
		if day == id {
			return true
		}
	}
	return false
}

var isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ParseIsoDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseIsoDate(value string) (time.Time, error) {
	if !isoDatePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format: %q", value)
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// ToIsoDate formats a time as YYYY-MM-DD in UTC.
func ToIsoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekStartIso returns the ISO date of the Monday on or before t.
func WeekStartIso(t time.Time) string {
	t = t.UTC()
	distanceFromMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -distanceFromMonday)
	return ToIsoDate(monday)
}

// AddDaysIso shifts an ISO date by dayOffset days.
func AddDaysIso(isoDate string, dayOffset int) (string, error) {
	t, err := ParseIsoDate(isoDate)
	if err != nil {
		return "", err
	}
	return ToIsoDate(t.AddDate(0, 0, dayOffset)), nil
}

// ShiftWeekIso shifts a week-start ISO date by whole weeks.
func ShiftWeekIso(weekStartIso string, weekOffset int) (string, error) {
	return AddDaysIso(weekStartIso, weekOffset*7)
}

// WeekDay pairs a planner day id with its calendar date.
type WeekDay struct {
	DayID   string
	DateIso string
	Label   string // e.g. "Mon, Jan 5"
}

// BuildWeekDays expands a week-start date into the seven planner days.
func BuildWeekDays(weekStartIso string) ([]WeekDay, error) {
	start, err := ParseIsoDate(weekStartIso)
	if err != nil {
		return nil, err
	}

	days := make([]WeekDay, 0, len(DayOrder))
	for i, dayID := range DayOrder {
		date := start.AddDate(0, 0, i)
		days = append(days, WeekDay{
			DayID:   dayID,
			DateIso: ToIsoDate(date),
			Label:   date.Format("Mon, Jan 2"),
		})
	}
	return days, nil
}

// WeekRangeLabel renders a compact "Jan 5 - Jan 11" label for a week.
func WeekRangeLabel(weekStartIso string) (string, error) {
	start, err := ParseIsoDate(weekStartIso)
	if err != nil {
		return "", err
	}
	end := start.AddDate(0, 0, 6)
	return start.Format("Jan 2") + " - " + end.Format("Jan 2"), nil
}
