package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	// Text styles
	titleStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle        = lipgloss.NewStyle().Foreground(successColor)
	errStyle       = lipgloss.NewStyle().Foreground(errorColor)

	// Conflict reason styles
	reasonStyles = map[string]lipgloss.Style{
		syncer.ReasonRemoteUpdate: lipgloss.NewStyle().Foreground(warningColor),
		syncer.ReasonWriteTimeout: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		syncer.ReasonRetryFailed:  lipgloss.NewStyle().Foreground(errorColor),
	}
)

// formatReason renders a conflict reason with color
func formatReason(reason string) string {
	style, ok := reasonStyles[reason]
	if !ok {
		return "[" + reason + "]"
	}
	return style.Render("[" + reason + "]")
}
