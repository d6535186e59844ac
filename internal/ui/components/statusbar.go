package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarData carries the info displayed in the bottom status bar.
type StatusBarData struct {
	Index         int // zero-based; ignored when Count is 0
	Count         int
	Title         string
	Kind          string
	Transitioning bool
	Pooled        int
	Message       string // transient info/error message
	IsError       bool
	Dir           string
}

// RenderStatusBar renders the bottom status bar with visual sections
// separated by dim vertical bars.
//
// Wide (>= 60):   3/12 │ intro.md │ markdown │ ⇄          slides
// Medium (40-59):  3/12 │ intro.md │ markdown
// Narrow (< 40):   3/12 │ intro.md
func RenderStatusBar(styles ui.Styles, data StatusBarData, width int) string {
	t := styles.Theme

	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Faint(true)
	sep := sepStyle.Render(" │ ")

	// ── Left sections ────────────────────────────────────────────

	posStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	var left string
	if data.Count == 0 {
		left = " " + posStyle.Render("empty")
	} else {
		left = " " + posStyle.Render(fmt.Sprintf("%d/%d", data.Index+1, data.Count))
		if data.Title != "" {
			left += sep + lipgloss.NewStyle().Foreground(t.Text).Render(ui.Truncate(data.Title, max(width/3, 8)))
		}
	}

	if width >= 40 && data.Kind != "" {
		badge := styles.BadgeText
		if data.Kind == "markdown" {
			badge = styles.BadgeMD
		}
		left += sep + badge.Render(data.Kind)
	}
	if width >= 60 && data.Transitioning {
		left += sep + lipgloss.NewStyle().Foreground(t.Warning).Render("⇄")
	}

	// ── Right section ────────────────────────────────────────────

	var right string
	if data.Message != "" {
		fg := t.Info
		if data.IsError {
			fg = t.Error
		}
		right = lipgloss.NewStyle().Foreground(fg).Render(data.Message) + " "
	} else if width >= 60 && data.Dir != "" {
		var b strings.Builder
		if data.Pooled > 0 {
			fmt.Fprintf(&b, "%d pooled  ", data.Pooled)
		}
		b.WriteString(filepath.Base(data.Dir))
		right = lipgloss.NewStyle().Foreground(t.TextSubtle).Render(b.String()) + " "
	}

	// ── Assemble ─────────────────────────────────────────────────

	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := width - leftW - rightW
	if gap < 0 {
		gap = 1
		right = "" // drop right side if no room
	}

	content := left + strings.Repeat(" ", gap) + right

	return styles.StatusBar.Width(width).Render(content)
}
