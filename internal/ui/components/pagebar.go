package components

import (
	"strings"
	"unicode/utf8"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// PageBarRows is the number of screen rows the page bar occupies: one row
// of labels and one progress underline.
const PageBarRows = 2

// maxLabel caps how many runes of a page name the bar shows.
const maxLabel = 20

// PageTab describes a single page label for rendering.
type PageTab struct {
	Name   string
	Active bool
}

// Zone is the column range [Start, End) a page label occupies in the bar.
type Zone struct {
	Index      int
	Start, End int
}

// labelWidth returns the visual width of a label: " name ".
func labelWidth(name string) int {
	n := utf8.RuneCountInString(name)
	return 1 + min(n, maxLabel) + 1
}

// window picks the run of labels around the active one that fits in width.
// It grows alternately to the right and to the left, reserving room for
// the overflow markers.
func window(tabs []PageTab, active, width int) (lo, hi int) {
	lo, hi = active, active
	used := labelWidth(tabs[active].Name) + 4 // " ‹ " and " ›" markers
	for grew := true; grew; {
		grew = false
		if hi+1 < len(tabs) {
			if w := labelWidth(tabs[hi+1].Name); used+w <= width {
				hi++
				used += w
				grew = true
			}
		}
		if lo > 0 {
			if w := labelWidth(tabs[lo-1].Name); used+w <= width {
				lo--
				used += w
				grew = true
			}
		}
	}
	return lo, hi
}

// RenderPageBar renders the page strip: the names of the pages around the
// active one, with markers where the strip is clipped, above a progress
// track showing how far through the deck the viewport is. It returns the
// click zones of the visible labels.
func RenderPageBar(styles ui.Styles, tabs []PageTab, progress float64, width int) (string, []Zone) {
	t := styles.Theme
	if width <= 0 {
		return "", nil
	}
	if len(tabs) == 0 {
		row := lipgloss.NewStyle().Width(width).Background(t.Bg).Render("")
		return row + "\n" + RenderProgress(styles, width, 0, 0), nil
	}

	active := 0
	for i, tab := range tabs {
		if tab.Active {
			active = i
			break
		}
	}
	lo, hi := window(tabs, active, width)

	activeStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	markerStyle := lipgloss.NewStyle().Foreground(t.TextSubtle)

	var row strings.Builder
	row.Grow(width + 32)
	col := 0
	if lo > 0 {
		row.WriteString(markerStyle.Render(" ‹"))
	} else {
		row.WriteString("  ")
	}
	col += 2

	zones := make([]Zone, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		label := ui.Truncate(tabs[i].Name, maxLabel)
		style := inactiveStyle
		if i == active {
			style = activeStyle
		}
		styled := " " + style.Render(label) + " "
		w := lipgloss.Width(styled)
		zones = append(zones, Zone{Index: i, Start: col, End: col + w})
		row.WriteString(styled)
		col += w
	}
	if hi < len(tabs)-1 {
		row.WriteString(markerStyle.Render(" ›"))
	}

	rendered := lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(t.Bg).
		Render(row.String())

	return rendered + "\n" + RenderProgress(styles, width, len(tabs), progress), zones
}

// HitZone returns the page index under column x.
func HitZone(zones []Zone, x int) (int, bool) {
	for _, z := range zones {
		if x >= z.Start && x < z.End {
			return z.Index, true
		}
	}
	return 0, false
}
