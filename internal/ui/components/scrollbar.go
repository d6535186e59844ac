package components

import (
	"strings"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar returns a vertical scrollbar track of the given height.
// It shows a thumb proportional to the visible portion, positioned
// according to the scroll percentage.
//
// Returns an empty string if all content fits (no scrolling needed).
func RenderScrollbar(styles ui.Styles, height, totalLines, visibleH int, scrollPct float64) string {
	if totalLines <= visibleH || height < 1 {
		return ""
	}
	start, size := thumb(height, float64(visibleH)/float64(totalLines), scrollPct)

	thumbStyle := lipgloss.NewStyle().Foreground(styles.Theme.Primary)
	trackStyle := lipgloss.NewStyle().Foreground(styles.Theme.Border)

	var b strings.Builder
	b.Grow(height * 4)
	for i := 0; i < height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= start && i < start+size {
			b.WriteString(thumbStyle.Render("█"))
		} else {
			b.WriteString(trackStyle.Render("░"))
		}
	}
	return b.String()
}

// RenderProgress returns a horizontal track of the given width with a thumb
// one page wide, placed at progress (0.0–1.0) through the deck. It is blank
// when the deck has fewer than two pages.
func RenderProgress(styles ui.Styles, width, pages int, progress float64) string {
	if pages < 2 || width < 1 {
		return strings.Repeat(" ", max(width, 0))
	}
	start, size := thumb(width, 1/float64(pages), progress)

	thumbStyle := lipgloss.NewStyle().Foreground(styles.Theme.Primary)
	trackStyle := lipgloss.NewStyle().Foreground(styles.Theme.Border)
	return trackStyle.Render(strings.Repeat("─", start)) +
		thumbStyle.Render(strings.Repeat("━", size)) +
		trackStyle.Render(strings.Repeat("─", width-start-size))
}

// thumb sizes and places a thumb on a track of length n.
func thumb(n int, fraction, pct float64) (start, size int) {
	size = min(max(int(float64(n)*fraction), 1), n)
	span := n - size
	start = min(max(int(pct*float64(span)+0.5), 0), span)
	return start, size
}
