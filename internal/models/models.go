// Package models defines the household domain entities shared across
// the data layer, output formatting, and the TUI.
package models

import "time"

// Role represents a member's role within a household
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// ActivityType categorizes activity log entries
type ActivityType string

const (
	ActivityHousehold ActivityType = "household"
	ActivityMemberLog ActivityType = "member"
	ActivityMeal      ActivityType = "meal"
	ActivityGrocery   ActivityType = "grocery"
	ActivityLocation  ActivityType = "location"
	ActivityInfo      ActivityType = "info"
)

// Household represents a group sharing meal plans and grocery lists
type Household struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	OwnerUID   string     `json:"ownerUid"`
	InviteCode string     `json:"inviteCode"`
	MemberUIDs []string   `json:"memberUids"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// Member represents a household member
type Member struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Role        Role   `json:"role"`
}

// GroceryItem represents one entry on the shared grocery list
type GroceryItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Quantity   string     `json:"quantity,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	LocationID string     `json:"locationId,omitempty"`
	PersonTag  string     `json:"personTag,omitempty"`
	MealDayID  string     `json:"mealDayId,omitempty"`
	Completed  bool       `json:"completed"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	CreatedBy  string     `json:"createdBy,omitempty"`
	UpdatedBy  string     `json:"updatedBy,omitempty"`
}

// Location represents a store grocery items can be assigned to
type Location struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// DayPlan represents one day's planned meal within a week
type DayPlan struct {
	DayID     string     `json:"dayId"`
	MealName  string     `json:"mealName"`
	CookUID   string     `json:"cookUid,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// Activity represents one entry in the household activity log
type Activity struct {
	ID        string       `json:"id"`
	ActorName string       `json:"actorName"`
	Message   string       `json:"message"`
	Type      ActivityType `json:"type"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// User identifies the acting member for data-layer calls
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// Name returns the best available display name for the user.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown member"
}
