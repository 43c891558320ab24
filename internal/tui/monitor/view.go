package monitor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/evanklingensmith/hungrymarmots/internal/output"
)

// renderView assembles the full monitor screen.
func (m Model) renderView() string {
	if m.Width < MinWidth || m.Height < MinHeight {
		return subtleStyle.Render(fmt.Sprintf("Terminal too small (need %dx%d)", MinWidth, MinHeight))
	}
	if m.ShowHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.Height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderConflictsPanel(bodyHeight),
		m.renderPendingPanel(),
		m.renderActivityPanel(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Sync Monitor")
	status := okStyle.Render("in sync")
	if m.State.Count > 0 {
		status = errStyle.Render(fmt.Sprintf("%d conflict(s)", m.State.Count))
	} else if m.State.PendingWrites > 0 {
		status = subtleStyle.Render(fmt.Sprintf("%d write(s) in flight", m.State.PendingWrites))
	}

	var refreshed string
	if !m.LastRefresh.IsZero() {
		refreshed = timestampStyle.Render("refreshed " + output.FormatTimeAgo(m.LastRefresh))
	}

	line := title + "  " + status
	if refreshed != "" {
		line += "  " + refreshed
	}
	if m.Filtering || strings.TrimSpace(m.Filter.Value()) != "" {
		line += "\n" + m.Filter.View()
	}
	return line
}

func (m Model) renderFooter() string {
	if m.Err != nil {
		return errStyle.Render("error: " + m.Err.Error())
	}
	parts := []string{"tab panels", "j/k scroll", "/ filter", "s keep server", "l keep mine", "r refresh", "? help", "q quit"}
	if m.LastResult != nil {
		parts = append([]string{okStyle.Render(fmt.Sprintf("resolved %d, %d left", m.LastResult.Resolved, m.LastResult.Remaining))}, parts...)
	}
	return helpStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderHelp() string {
	lines := []string{
		titleStyle.Render("Sync Monitor Help"),
		"",
		"  1/2/3, tab   switch panel",
		"  j/k          scroll active panel",
		"  /            filter conflicts by path (enter/esc to close)",
		"  s            resolve all conflicts keeping the server copy",
		"  l            resolve all conflicts keeping your copy",
		"  r            refresh now",
		"  q            quit",
		"",
		helpStyle.Render("press ? to close"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) panelFrame(panel Panel, title, content string) string {
	style := panelStyle
	if panel == m.ActivePanel {
		style = activePanelStyle
	}
	width := m.Width - 4
	if width < MinWidth-4 {
		width = MinWidth - 4
	}
	return style.Width(width).Render(panelTitleStyle.Render(title) + "\n" + content)
}

// scrollLines applies the panel's scroll offset and height budget.
func (m Model) scrollLines(panel Panel, lines []string, max int) string {
	if len(lines) == 0 {
		return subtleStyle.Render("(empty)")
	}
	offset := m.ScrollOffset[panel]
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	lines = lines[offset:]
	if max > 0 && len(lines) > max {
		lines = lines[:max]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderConflictsPanel(bodyHeight int) string {
	conflicts := m.visibleConflicts()
	var lines []string
	for _, c := range conflicts {
		lines = append(lines, fmt.Sprintf("%s %s", formatReason(c.Reason), titleStyle.Render(c.Path)))
		lines = append(lines, subtleStyle.Render(fmt.Sprintf("   detected %s", output.FormatTimeAgo(c.CreatedAt))))
		lines = append(lines, "   yours:  "+inlineData(c.Local.Data))
		lines = append(lines, fmt.Sprintf("   theirs: %s (v%d by %s)",
			inlineData(c.Remote.Data), c.Remote.Meta.Version, c.Remote.Meta.UpdatedBy))
	}
	if len(lines) == 0 {
		lines = []string{okStyle.Render("No conflicts")}
	}

	budget := bodyHeight / 2
	content := m.scrollLines(PanelConflicts, lines, budget)
	return m.panelFrame(PanelConflicts, fmt.Sprintf("Conflicts (%d)", len(conflicts)), content)
}

func (m Model) renderPendingPanel() string {
	var lines []string
	if m.State.PendingWrites > 0 {
		lines = append(lines, fmt.Sprintf("%d optimistic write(s) awaiting server confirmation", m.State.PendingWrites))
		lines = append(lines, subtleStyle.Render("writes unconfirmed past the timeout appear above as conflicts"))
	}
	content := m.scrollLines(PanelPending, lines, 4)
	return m.panelFrame(PanelPending, fmt.Sprintf("Pending writes (%d)", m.State.PendingWrites), content)
}

func (m Model) renderActivityPanel() string {
	var lines []string
	for _, entry := range m.Activity {
		lines = append(lines, output.FormatActivity(entry))
	}
	content := m.scrollLines(PanelActivity, lines, 6)
	return m.panelFrame(PanelActivity, "Activity", content)
}

// inlineData renders a conflict payload on one line, truncated.
func inlineData(data map[string]any) string {
	if len(data) == 0 {
		return subtleStyle.Render("(no data)")
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return subtleStyle.Render("(unprintable)")
	}
	const maxInline = 60
	s := string(blob)
	if len(s) > maxInline {
		s = s[:maxInline-1] + "…"
	}
	return s
}
