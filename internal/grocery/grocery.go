// Package grocery provides filtering, sorting, and display helpers for
// the shared grocery list.
package grocery

import (
	"sort"
	"strings"

	"github.com/evanklingensmith/hungrymarmots/internal/models"
)

// FilterAll is the wildcard for location and person filters.
const FilterAll = "all"

// Status filter values.
const (
	StatusOpen = "open"
	StatusDone = "done"
	StatusAll  = "all"
)

// Filters narrows a grocery list. Zero values mean "open items,
// any location, any person".
type Filters struct {
	LocationID string
	PersonTag  string
	Status     string
}

func (f Filters) withDefaults() Filters {
	if f.LocationID == "" {
		f.LocationID = FilterAll
	}
	if f.PersonTag == "" {
		f.PersonTag = FilterAll
	}
	if f.Status == "" {
		f.Status = StatusOpen
	}
	return f
}

// CollectPersonTags returns the distinct person tags across items,
// case-insensitively deduplicated (first spelling wins), sorted.
func CollectPersonTags(items []models.GroceryItem) []string {
	seen := make(map[string]string)
	for _, item := range items {
		tag := strings.TrimSpace(item.PersonTag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; !ok {
			seen[key] = tag
		}
	}

	tags := make([]string, 0, len(seen))
	for _, tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Filter returns the items matching the given filters.
func Filter(items []models.GroceryItem, filters Filters) []models.GroceryItem {
	f := filters.withDefaults()

	var out []models.GroceryItem
	for _, item := range items {
		if f.LocationID != FilterAll && item.LocationID != f.LocationID {
			continue
		}
		if f.PersonTag != FilterAll && !strings.EqualFold(item.PersonTag, f.PersonTag) {
			continue
		}
		if f.Status == StatusOpen && item.Completed {
			continue
		}
		if f.Status == StatusDone && !item.Completed {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Sort orders items for display: open items before completed, then by
// name. The input slice is not modified.
func Sort(items []models.GroceryItem) []models.GroceryItem {
	sorted := make([]models.GroceryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Completed != sorted[j].Completed {
			return !sorted[i].Completed
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// Describe renders an item's secondary details ("1 gal | Corner Store |
// For Alex | Linked to monday"). locationsByID maps location ids to
// display names.
func Describe(item models.GroceryItem, locationsByID map[string]string) string {
	var details []string

	if item.Quantity != "" {
		details = append(details, item.Quantity)
	}
	if item.LocationID != "" {
		if name, ok := locationsByID[item.LocationID]; ok {
			details = append(details, name)
		}
	}
	if item.PersonTag != "" {
		details = append(details, "For "+item.PersonTag)
	}
	if item.MealDayID != "" {
		details = append(details, "Linked to "+item.MealDayID)
	}

	return strings.Join(details, " | ")
}
