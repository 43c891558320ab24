// Package output provides styled terminal output helpers (success,
// error, warning, entity formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/evanklingensmith/hungrymarmots/internal/dates"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/plan"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	ownerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	reasonStyles = map[string]lipgloss.Style{
		syncer.ReasonRemoteUpdate: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		syncer.ReasonWriteTimeout: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		syncer.ReasonRetryFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeConflict      = "conflict"
	ErrCodeDatabaseError = "database_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	fmt.Printf(`{"error":{"code":"%s","message":"%s"}}`, code, message)
	fmt.Println()
}

// FormatHousehold formats a household line for listings.
// e.g. "hh-id  Marmot House  3 members  invite ABC123"
func FormatHousehold(h models.Household) string {
	memberCount := fmt.Sprintf("%d member", len(h.MemberUIDs))
	if len(h.MemberUIDs) != 1 {
		memberCount += "s"
	}
	return strings.Join([]string{
		titleStyle.Render(h.Name),
		subtleStyle.Render(h.ID),
		memberCount,
		subtleStyle.Render("invite " + h.InviteCode),
	}, "  ")
}

// FormatMember formats a household member line.
func FormatMember(m models.Member) string {
	name := m.DisplayName
	if m.Role == models.RoleOwner {
		return fmt.Sprintf("%s %s", ownerStyle.Render("★"), titleStyle.Render(name))
	}
	return "  " + name
}

// FormatGroceryItem formats one grocery list entry with its checkbox,
// location, and tags.
func FormatGroceryItem(item models.GroceryItem, locationsByID map[string]string) string {
	box := "○"
	name := item.Name
	if item.Completed {
		box = successStyle.Render("✓")
		name = doneStyle.Render(name)
	}

	line := fmt.Sprintf("%s %s", box, name)
	var extras []string
	if item.Quantity != "" {
		extras = append(extras, item.Quantity)
	}
	if loc, ok := locationsByID[item.LocationID]; ok && loc != "" {
		extras = append(extras, "@ "+loc)
	}
	if item.PersonTag != "" {
		extras = append(extras, "for "+item.PersonTag)
	}
	if item.MealDayID != "" {
		extras = append(extras, item.MealDayID)
	}
	if len(extras) > 0 {
		line += "  " + subtleStyle.Render(strings.Join(extras, " | "))
	}
	return line
}

// FormatWeekPlan formats one week's meal plan, one line per day.
func FormatWeekPlan(weekStartIso string, week plan.WeekPlan, membersByUID map[string]string) string {
	var sb strings.Builder
	if label, err := dates.WeekRangeLabel(weekStartIso); err == nil {
		sb.WriteString(titleStyle.Render("Week of " + label))
		sb.WriteString("\n")
	}

	days, err := dates.BuildWeekDays(weekStartIso)
	if err != nil {
		// Fall back to day order without dates.
		for _, dayID := range dates.DayOrder {
			sb.WriteString(formatDayLine(dayID, "", week[dayID], membersByUID))
		}
		return sb.String()
	}
	for _, day := range days {
		sb.WriteString(formatDayLine(day.DayID, day.Label, week[day.DayID], membersByUID))
	}
	return sb.String()
}

func formatDayLine(dayID, label string, day models.DayPlan, membersByUID map[string]string) string {
	heading := dayID
	if label != "" {
		heading = label
	}
	meal := day.MealName
	if meal == "" {
		meal = subtleStyle.Render("—")
	}
	line := fmt.Sprintf("  %-14s %s", heading, meal)
	if cook, ok := membersByUID[day.CookUID]; ok && cook != "" {
		line += subtleStyle.Render("  (" + cook + ")")
	}
	return line + "\n"
}

// FormatActivity formats one activity feed entry.
func FormatActivity(entry models.Activity) string {
	stamp := ""
	if entry.CreatedAt != nil {
		stamp = subtleStyle.Render(FormatTimeAgo(*entry.CreatedAt)) + "  "
	}
	return fmt.Sprintf("%s%s %s", stamp, titleStyle.Render(entry.ActorName), entry.Message)
}

// ReasonBadge returns a colored conflict-reason tag.
func ReasonBadge(reason string) string {
	style, ok := reasonStyles[reason]
	if !ok {
		return "[" + reason + "]"
	}
	return style.Render("[" + reason + "]")
}

// FormatConflict formats one sync conflict with both sides of the edit.
func FormatConflict(c syncer.Conflict) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", ReasonBadge(c.Reason), titleStyle.Render(c.Path)))
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("  detected %s", FormatTimeAgo(c.CreatedAt))))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  yours:  %s\n", summarizeData(c.Local.Data)))
	sb.WriteString(fmt.Sprintf("  theirs: %s (v%d by %s)\n",
		summarizeData(c.Remote.Data), c.Remote.Meta.Version, c.Remote.Meta.UpdatedBy))
	return sb.String()
}

// summarizeData renders a small payload inline, truncated for display.
func summarizeData(data map[string]any) string {
	if len(data) == 0 {
		return subtleStyle.Render("(no data)")
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return subtleStyle.Render("(unprintable)")
	}
	const maxSummary = 80
	s := string(blob)
	if len(s) > maxSummary {
		s = s[:maxSummary-1] + "…"
	}
	return s
}

// FormatSyncState summarizes coordinator state for `sync status`.
func FormatSyncState(state syncer.State) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Client: %s\n", subtleStyle.Render(state.ClientID)))
	sb.WriteString(fmt.Sprintf("Pending writes: %d\n", state.PendingWrites))
	if state.Count == 0 {
		sb.WriteString(successStyle.Render("No conflicts"))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(warningStyle.Render(fmt.Sprintf("%d conflict(s)", state.Count)))
	sb.WriteString("\n\n")
	for _, c := range state.Conflicts {
		sb.WriteString(FormatConflict(c))
	}
	return sb.String()
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nMEMBERS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

// BulletList formats items as a bulleted list with optional indentation
func BulletList(items []string, indent int) []string {
	prefix := strings.Repeat(" ", indent)
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = prefix + "- " + item
	}
	return result
}
