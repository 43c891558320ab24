package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

const (
	defaultRenderWidth = 80
	minRenderWidth     = 20
)

// renderWidth probes the terminal for the wrap width, falling back to
// $COLUMNS and then the default.
func renderWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return defaultRenderWidth
}

// RenderMarkdown renders markdown for the terminal, wrapped to the
// current width. On renderer failure the raw markdown comes back
// unstyled, so detail output is never lost to a styling problem.
func RenderMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	width := renderWidth()
	if width < minRenderWidth {
		width = minRenderWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// ConflictDetailMarkdown builds the detail document for one conflict:
// what each side holds, who wrote it, and at which version.
func ConflictDetailMarkdown(c syncer.Conflict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Path)
	fmt.Fprintf(&b, "**%s** — detected %s (conflict `%s`)\n\n", c.Reason, FormatTimeAgo(c.CreatedAt), c.ID)

	b.WriteString("## Yours\n\n")
	fmt.Fprintf(&b, "Queued %s at base version %d.\n\n", FormatTimeAgo(c.Local.QueuedAt), c.Local.BaseVersion)
	b.WriteString(dataCodeBlock(c.Local.Data))

	b.WriteString("## Theirs\n\n")
	fmt.Fprintf(&b, "Version %d by `%s`.\n\n", c.Remote.Meta.Version, c.Remote.Meta.UpdatedBy)
	b.WriteString(dataCodeBlock(c.Remote.Data))

	b.WriteString("Resolve with `marmots sync resolve`.\n")
	return b.String()
}

func dataCodeBlock(data map[string]any) string {
	if len(data) == 0 {
		return "_no data observed_\n\n"
	}
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v\n\n", data)
	}
	return "```json\n" + string(blob) + "\n```\n\n"
}
