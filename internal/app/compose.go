package app

import (
	"math"
	"strings"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
	"github.com/Akashdeep-Patra/zed-page-view/internal/surface"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/charmbracelet/x/ansi"
)

// strip is one page's screen, width by height cells, placed at a signed
// cell offset along the scroll axis.
type strip struct {
	at    int
	lines []string
}

// strips turns the surface's attached pages into strips relative to the
// viewport. view renders one page.
func strips(axis pager.Axis, offset pager.Point, placed []surface.Placement, width, height int, view func(*pager.Page) string) []strip {
	out := make([]strip, 0, len(placed))
	for _, pl := range placed {
		var at float64
		if axis == pager.Vertical {
			at = pl.Frame.Y - offset.Y
		} else {
			at = pl.Frame.X - offset.X
		}
		out = append(out, strip{
			at:    int(math.Round(at)),
			lines: ui.Fit(view(pl.Page), width, height),
		})
	}
	return out
}

// compose paints strips into a width by height screen. Cells no strip
// covers, such as the gap past an edge while rubber-banding, stay blank.
func compose(axis pager.Axis, ss []strip, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	blank := strings.Repeat(" ", width)
	rows := make([]string, height)

	if axis == pager.Vertical {
		for y := range rows {
			rows[y] = blank
			for _, s := range ss {
				if i := y - s.at; i >= 0 && i < len(s.lines) {
					rows[y] = s.lines[i]
					break
				}
			}
		}
		return strings.Join(rows, "\n")
	}

	for y := range rows {
		var b strings.Builder
		col := 0
		for _, s := range ss {
			lo, hi := max(s.at, col), min(s.at+width, width)
			if hi <= lo || y >= len(s.lines) {
				continue
			}
			if lo > col {
				b.WriteString(blank[:lo-col])
			}
			b.WriteString(ansi.Cut(s.lines[y], lo-s.at, hi-s.at))
			col = hi
		}
		if col < width {
			b.WriteString(blank[:width-col])
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}
