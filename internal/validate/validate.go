// Package validate normalizes and validates user input for household,
// meal, grocery, and location entities. Each function trims input,
// enforces length limits, and returns the canonical value; errors are
// user-facing messages.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/evanklingensmith/hungrymarmots/internal/dates"
)

const (
	maxHouseholdName = 60
	maxMealName      = 120
	maxItemName      = 80
	maxQuantity      = 24
	maxNotes         = 240
	maxPersonTag     = 50
	maxLocationName  = 40
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,12}$`)

// HouseholdName validates a household display name.
func HouseholdName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", errors.New("household name is required")
	}
	if len(name) > maxHouseholdName {
		return "", fmt.Errorf("household name must be %d characters or less", maxHouseholdName)
	}
	return name, nil
}

// InviteCode uppercases and validates an invite code.
func InviteCode(value string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if !inviteCodePattern.MatchString(code) {
		return "", errors.New("invite code must be 4-12 letters or numbers")
	}
	return code, nil
}

// Meal is a normalized meal assignment. An empty MealName clears the day.
type Meal struct {
	MealName string
	CookUID  string
}

// MealInput validates a meal assignment. Empty input is allowed; it
// represents clearing the planned meal.
func MealInput(mealName, cookUID string) (Meal, error) {
	meal := Meal{
		MealName: strings.TrimSpace(mealName),
		CookUID:  strings.TrimSpace(cookUID),
	}
	if len(meal.MealName) > maxMealName {
		return Meal{}, fmt.Errorf("meal name must be %d characters or less", maxMealName)
	}
	return meal, nil
}

// GroceryItem is a normalized grocery list entry. Optional fields are
// empty strings when absent.
type GroceryItem struct {
	Name       string
	Quantity   string
	Notes      string
	LocationID string
	PersonTag  string
	MealDayID  string
	Completed  bool
}

// GroceryInput validates a grocery item.
func GroceryInput(input GroceryItem) (GroceryItem, error) {
	item := GroceryItem{
		Name:       strings.TrimSpace(input.Name),
		Quantity:   strings.TrimSpace(input.Quantity),
		Notes:      strings.TrimSpace(input.Notes),
		LocationID: strings.TrimSpace(input.LocationID),
		PersonTag:  strings.TrimSpace(input.PersonTag),
		MealDayID:  strings.TrimSpace(input.MealDayID),
		Completed:  input.Completed,
	}

	if item.Name == "" {
		return GroceryItem{}, errors.New("item name is required")
	}
	if len(item.Name) > maxItemName {
		return GroceryItem{}, fmt.Errorf("item name must be %d characters or less", maxItemName)
	}
	if len(item.Quantity) > maxQuantity {
		return GroceryItem{}, fmt.Errorf("quantity must be %d characters or less", maxQuantity)
	}
	if len(item.Notes) > maxNotes {
		return GroceryItem{}, fmt.Errorf("notes must be %d characters or less", maxNotes)
	}
	if len(item.PersonTag) > maxPersonTag {
		return GroceryItem{}, fmt.Errorf("person tag must be %d characters or less", maxPersonTag)
	}
	if item.MealDayID != "" && !dates.IsDayID(item.MealDayID) {
		return GroceryItem{}, errors.New("meal day must be one of monday-sunday")
	}
	return item, nil
}

// LocationName validates a store/location name.
func LocationName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", errors.New("location name is required")
	}
	if len(name) > maxLocationName {
		return "", fmt.Errorf("location name must be %d characters or less", maxLocationName)
	}
	return name, nil
}
