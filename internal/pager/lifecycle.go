package pager

import "github.com/google/uuid"

// AppearanceState is where a page (or the container itself) is in its
// appear/disappear cycle.
type AppearanceState int

const (
	None AppearanceState = iota
	WillAppear
	DidAppear
	WillDisappear
	DidDisappear
)

func (s AppearanceState) String() string {
	switch s {
	case WillAppear:
		return "will-appear"
	case DidAppear:
		return "did-appear"
	case WillDisappear:
		return "will-disappear"
	case DidDisappear:
		return "did-disappear"
	default:
		return "none"
	}
}

// Content is the consumer-provided body of a page. The container calls the
// two hooks in begin/end pairs as the page enters and leaves the viewport.
type Content interface {
	BeginAppearance(appearing, animated bool)
	EndAppearance()
}

// Reusable is implemented by content that wants a reset before it is handed
// out again by DequeueReusable.
type Reusable interface {
	PrepareForReuse()
}

// Page is one unit of pageable content. The container owns the appearance
// state and the reuse tag; the content never sees them directly.
type Page struct {
	id       string
	content  Content
	reuseID  string
	state    AppearanceState
	attached bool
}

// NewPage wraps content that is not managed by the reuse pool.
func NewPage(content Content) *Page {
	return &Page{id: uuid.NewString(), content: content}
}

// ID is a per-instance identifier, stable across reuse.
func (p *Page) ID() string { return p.id }

// Content returns the wrapped content.
func (p *Page) Content() Content { return p.content }

// ReuseIdentifier is the identifier the page was dequeued with, or "".
func (p *Page) ReuseIdentifier() string { return p.reuseID }

// Appearance reports the page's current lifecycle state.
func (p *Page) Appearance() AppearanceState { return p.state }

// Attached reports whether the page is currently placed on the surface.
func (p *Page) Attached() bool { return p.attached }

// transition moves the page to the requested state and emits the matching
// begin/end hooks. Repeated requests for the same state are ignored. A page
// that never appeared is marked disappeared without any hooks.
func (p *Page) transition(to AppearanceState, animated bool) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	if to == DidDisappear && from == None {
		return
	}

	switch to {
	case None:
	case WillAppear:
		p.content.BeginAppearance(true, animated)
	case DidAppear:
		if from != WillAppear {
			p.content.BeginAppearance(true, animated)
		}
		p.content.EndAppearance()
	case WillDisappear:
		p.content.BeginAppearance(false, animated)
	case DidDisappear:
		if from != WillDisappear {
			p.content.BeginAppearance(false, animated)
		}
		p.content.EndAppearance()
	}
}
