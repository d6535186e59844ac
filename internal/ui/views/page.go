package views

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/components"
)

// headerRows is the page title row plus its underline.
const headerRows = 2

// DocumentPage is the content of one pager page: a header and a scrollable
// viewport over the rendered document. Rendering is lazy; it happens when
// the page starts appearing or is first drawn, and again after a resize.
type DocumentPage struct {
	styles   ui.Styles
	renderer Renderer

	doc    Document
	vp     viewport.Model
	width  int
	height int
	fresh  bool // vp holds doc rendered at the current width

	appearing   bool
	inFlight    bool
	visible     bool
	appearances int
	resets      int
}

var (
	_ pager.Content  = (*DocumentPage)(nil)
	_ pager.Reusable = (*DocumentPage)(nil)
)

// NewDocumentPage creates an empty page that renders with r.
func NewDocumentPage(styles ui.Styles, r Renderer) *DocumentPage {
	return &DocumentPage{
		styles:   styles,
		renderer: r,
		vp:       viewport.New(0, 0),
	}
}

// Bind shows doc on the page, scrolled to the top.
func (p *DocumentPage) Bind(doc Document) {
	p.doc = doc
	p.fresh = false
	p.vp.GotoTop()
}

// Document returns the bound document.
func (p *DocumentPage) Document() Document { return p.doc }

// SetSize sets the full page size, header included.
func (p *DocumentPage) SetSize(w, h int) {
	if w == p.width && h == p.height {
		return
	}
	p.width, p.height = w, h
	// The last column is the scrollbar.
	p.vp.Width = max(w-1, 0)
	p.vp.Height = max(h-headerRows, 0)
	p.fresh = false
}

// ── pager.Content ───────────────────────────────────────────────────────────

func (p *DocumentPage) BeginAppearance(appearing, _ bool) {
	p.inFlight = true
	p.appearing = appearing
	if appearing {
		p.ensureRendered()
	}
}

func (p *DocumentPage) EndAppearance() {
	p.inFlight = false
	if p.appearing {
		p.visible = true
		p.appearances++
		return
	}
	p.visible = false
	p.vp.GotoTop()
}

// PrepareForReuse drops the bound document before the pool hands the page
// out again.
func (p *DocumentPage) PrepareForReuse() {
	p.doc = Document{}
	p.fresh = false
	p.vp.SetContent("")
	p.vp.GotoTop()
	p.resets++
}

// Visible reports whether the page has fully appeared and not yet started
// to disappear.
func (p *DocumentPage) Visible() bool { return p.visible && !p.inFlight }

// Appearances counts completed appearances since the page was created.
func (p *DocumentPage) Appearances() int { return p.appearances }

// ── Scrolling ───────────────────────────────────────────────────────────────

// ScrollLines scrolls the body by n lines, up when n is negative.
func (p *DocumentPage) ScrollLines(n int) {
	p.ensureRendered()
	if n >= 0 {
		p.vp.ScrollDown(n)
	} else {
		p.vp.ScrollUp(-n)
	}
}

// ScrollHalf scrolls half a body height in the given direction.
func (p *DocumentPage) ScrollHalf(down bool) {
	n := max(p.vp.Height/2, 1)
	if !down {
		n = -n
	}
	p.ScrollLines(n)
}

// ScrollPercent reports how far the body is scrolled, 0.0–1.0.
func (p *DocumentPage) ScrollPercent() float64 { return p.vp.ScrollPercent() }

// ── Rendering ───────────────────────────────────────────────────────────────

func (p *DocumentPage) ensureRendered() {
	if p.fresh || p.vp.Width <= 0 {
		return
	}
	var content string
	switch {
	case p.doc.Err != nil:
		content = p.styles.Error.Render(p.doc.Err.Error())
	case p.renderer == nil:
		content = p.doc.Body
	default:
		out, err := p.renderer.Render(p.doc, p.vp.Width)
		if err != nil {
			out = p.styles.Error.Render(err.Error())
		}
		content = out
	}
	p.vp.SetContent(content)
	p.fresh = true
}

func (p *DocumentPage) header() string {
	badge := p.styles.BadgeText
	if p.doc.Kind == KindMarkdown {
		badge = p.styles.BadgeMD
	}
	left := p.styles.Title.Render(ui.Truncate(p.doc.Name, max(p.width-24, 8)))
	right := badge.Render(string(p.doc.Kind))
	if !p.doc.ModTime.IsZero() {
		right = p.styles.Muted.Render(p.doc.ModTime.Format("Jan 02 15:04")) + "  " + right
	}
	gap := max(p.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return p.styles.PageHeader.Width(p.width).Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}

// View renders the page at its size.
func (p *DocumentPage) View() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	p.ensureRendered()
	body := p.vp.View()
	if bar := components.RenderScrollbar(p.styles, p.vp.Height, p.vp.TotalLineCount(), p.vp.VisibleLineCount(), p.vp.ScrollPercent()); bar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, bar)
	}
	return p.header() + "\n" + body
}
