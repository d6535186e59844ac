package pager

// DataSource supplies the ordered collection. It is required: the container
// raises an InvariantError if a page must be materialized and none is set.
type DataSource interface {
	PageCount() int
	// PageAt returns the page for index, usually obtained from
	// Container.DequeueReusable. It must not return nil.
	PageAt(index int) *Page
}

// Delegate observes paging progress. Embed NopDelegate to implement only the
// callbacks you need.
type Delegate interface {
	// WillBeginShowing fires when a page is about to be attached.
	WillBeginShowing(index int, page *Page)
	// DidFinishShowing fires when paging settles on a page.
	DidFinishShowing(index int, page *Page)
	// DidStopShowing fires after a page has been detached.
	DidStopShowing(index int, page *Page)
	// DidUpdatePosition fires once per layout pass.
	DidUpdatePosition()
	WillBeginGesture()
	// DidEndGesture fires once a gesture has fully settled, so several
	// WillBeginGesture calls may precede a single DidEndGesture.
	DidEndGesture()
}

// NopDelegate implements Delegate with no-ops.
type NopDelegate struct{}

func (NopDelegate) WillBeginShowing(int, *Page) {}
func (NopDelegate) DidFinishShowing(int, *Page) {}
func (NopDelegate) DidStopShowing(int, *Page)   {}
func (NopDelegate) DidUpdatePosition()          {}
func (NopDelegate) WillBeginGesture()           {}
func (NopDelegate) DidEndGesture()              {}

var _ Delegate = NopDelegate{}

// Prefetcher is told which indices to start preparing ahead of visibility and
// which earlier requests to abandon. Both slices are sorted ascending.
type Prefetcher interface {
	PrefetchWindowChanged(start, cancel []int)
}

// Surface is the rendering-surface adapter the container drives. Offsets and
// sizes are in surface units (terminal cells for the TUI host).
//
// SetOffset(p, false) must report the change synchronously through
// SurfaceEvents.ViewportDidChange when the offset actually moves; an animated
// set reports each frame and ends with SurfaceEvents.AnimationDidEnd. Both
// stop a running deceleration; no DecelerationDidEnd follows.
type Surface interface {
	Bounds() Size
	Offset() Point
	SetOffset(p Point, animated bool)
	ContentSize() Size
	SetContentSize(s Size)

	IsTracking() bool
	IsDragging() bool
	IsDecelerating() bool

	Attach(p *Page, frame Rect)
	Place(p *Page, frame Rect)
	Detach(p *Page)
}

// SurfaceEvents is what the surface reports back. Container implements it.
type SurfaceEvents interface {
	ViewportDidChange()
	GestureWillBegin()
	GestureDidEnd(decelerate bool)
	DecelerationDidEnd()
	AnimationDidEnd()
}

// Point is a surface offset.
type Point struct{ X, Y float64 }

// Size is a surface extent.
type Size struct{ W, H float64 }

// Rect is a page frame in content coordinates.
type Rect struct{ X, Y, W, H float64 }

// Axis selects the paging direction. The two are mutually exclusive per
// container.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis accepts "horizontal"/"h" and "vertical"/"v".
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "horizontal", "h", "":
		return Horizontal, true
	case "vertical", "v":
		return Vertical, true
	}
	return Horizontal, false
}
