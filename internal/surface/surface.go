// Package surface implements pager.Surface for a terminal: a viewport over
// content laid out along one axis, driven by drag gestures from the host
// and stepped in time by frame ticks.
package surface

import (
	"math"
	"sort"
	"time"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
)

// Default timings.
const (
	DefaultAnimation    = 250 * time.Millisecond
	DefaultDeceleration = 180 * time.Millisecond

	// flickVelocity is the speed, in pages per second, above which a
	// released drag moves to the next page rather than the nearest one.
	flickVelocity = 0.6
	// rubberBand is how far past an edge a bouncing surface can be pulled,
	// as a fraction of the extent.
	rubberBand = 0.25
)

// motion interpolates the offset along the axis.
type motion struct {
	from, to float64
	elapsed  time.Duration
	duration time.Duration
}

func (m *motion) step(dt time.Duration) (float64, bool) {
	m.elapsed += dt
	if m.duration <= 0 || m.elapsed >= m.duration {
		return m.to, true
	}
	t := float64(m.elapsed) / float64(m.duration)
	// Ease out cubic.
	e := 1 - math.Pow(1-t, 3)
	return m.from + (m.to-m.from)*e, false
}

// Placement is an attached page and its frame in content coordinates.
type Placement struct {
	Page  *pager.Page
	Frame pager.Rect
}

// Surface is a terminal scroll surface. It is not safe for concurrent use;
// like the container it reports to, it belongs to the host's update loop.
type Surface struct {
	axis     pager.Axis
	listener pager.SurfaceEvents

	bounds  pager.Size
	offset  pager.Point
	content pager.Size
	pages   map[*pager.Page]pager.Rect

	tracking bool
	dragging bool

	anim  *motion
	decel *motion

	bounces       bool
	scrollEnabled bool

	animDuration  time.Duration
	decelDuration time.Duration
}

var _ pager.Surface = (*Surface)(nil)

// Option configures a Surface.
type Option func(*Surface)

// WithAnimation sets how long animated offset changes take. Zero makes them
// complete on the spot (still reporting AnimationDidEnd).
func WithAnimation(d time.Duration) Option { return func(s *Surface) { s.animDuration = d } }

// WithDeceleration sets how long a released drag takes to settle.
func WithDeceleration(d time.Duration) Option { return func(s *Surface) { s.decelDuration = d } }

// WithBounces allows dragging past the first and last page.
func WithBounces(b bool) Option { return func(s *Surface) { s.bounces = b } }

// New creates a surface of the given bounds.
func New(axis pager.Axis, width, height int, opts ...Option) *Surface {
	s := &Surface{
		axis:          axis,
		bounds:        pager.Size{W: float64(width), H: float64(height)},
		pages:         make(map[*pager.Page]pager.Rect),
		bounces:       true,
		scrollEnabled: true,
		animDuration:  DefaultAnimation,
		decelDuration: DefaultDeceleration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetListener sets who receives surface events, normally the container.
func (s *Surface) SetListener(l pager.SurfaceEvents) { s.listener = l }

// ── pager.Surface ───────────────────────────────────────────────────────────

func (s *Surface) Bounds() pager.Size          { return s.bounds }
func (s *Surface) Offset() pager.Point         { return s.offset }
func (s *Surface) ContentSize() pager.Size     { return s.content }
func (s *Surface) SetContentSize(c pager.Size) { s.content = c }
func (s *Surface) IsTracking() bool            { return s.tracking }
func (s *Surface) IsDragging() bool            { return s.dragging }
func (s *Surface) IsDecelerating() bool        { return s.decel != nil }

// SetOffset moves the viewport. Either kind of move stops a deceleration
// without reporting DecelerationDidEnd. A non-animated move cancels a running
// animation, which then reports AnimationDidEnd short of its target.
func (s *Surface) SetOffset(p pager.Point, animated bool) {
	s.decel = nil
	if animated {
		if s.animDuration <= 0 || p == s.offset {
			s.anim = nil
			s.moveTo(p)
			s.emit(func(l pager.SurfaceEvents) { l.AnimationDidEnd() })
			return
		}
		s.anim = &motion{from: s.along(s.offset), to: s.along(p), duration: s.animDuration}
		return
	}
	cancelled := s.anim != nil
	s.anim = nil
	s.moveTo(p)
	if cancelled {
		s.emit(func(l pager.SurfaceEvents) { l.AnimationDidEnd() })
	}
}

func (s *Surface) Attach(p *pager.Page, frame pager.Rect) { s.pages[p] = frame }
func (s *Surface) Place(p *pager.Page, frame pager.Rect)  { s.pages[p] = frame }
func (s *Surface) Detach(p *pager.Page)                   { delete(s.pages, p) }

// ── Host API ────────────────────────────────────────────────────────────────

// Resize changes the bounds without reporting anything; the host follows
// with Container.Relayout.
func (s *Surface) Resize(width, height int) {
	s.bounds = pager.Size{W: float64(width), H: float64(height)}
}

// Axis returns the scroll axis.
func (s *Surface) Axis() pager.Axis { return s.axis }

// SetScrollEnabled turns user drags on or off.
func (s *Surface) SetScrollEnabled(b bool) { s.scrollEnabled = b }

// ScrollEnabled reports whether user drags are accepted.
func (s *Surface) ScrollEnabled() bool { return s.scrollEnabled }

// SetBounces toggles rubber-banding past the edges.
func (s *Surface) SetBounces(b bool) { s.bounces = b }

// Bounces reports whether rubber-banding is on.
func (s *Surface) Bounces() bool { return s.bounces }

// Moving reports whether the host should keep sending frame ticks.
func (s *Surface) Moving() bool { return s.anim != nil || s.decel != nil }

// Visible returns the attached pages ordered along the axis.
func (s *Surface) Visible() []Placement {
	out := make([]Placement, 0, len(s.pages))
	for p, f := range s.pages {
		out = append(out, Placement{Page: p, Frame: f})
	}
	sort.Slice(out, func(i, j int) bool {
		return s.alongRect(out[i].Frame) < s.alongRect(out[j].Frame)
	})
	return out
}

// Frame returns where p is attached.
func (s *Surface) Frame(p *pager.Page) (pager.Rect, bool) {
	f, ok := s.pages[p]
	return f, ok
}

// BeginDrag starts a user gesture. It stops any deceleration or animation
// in place and reports false when scrolling is disabled.
func (s *Surface) BeginDrag() bool {
	if !s.scrollEnabled {
		return false
	}
	s.decel = nil
	cancelled := s.anim != nil
	s.anim = nil
	s.tracking, s.dragging = true, true
	if cancelled {
		s.emit(func(l pager.SurfaceEvents) { l.AnimationDidEnd() })
	}
	s.emit(func(l pager.SurfaceEvents) { l.GestureWillBegin() })
	return true
}

// DragBy moves the viewport by delta surface units along the axis. Past an
// edge the movement is halved and capped when bouncing, or clamped when not.
func (s *Surface) DragBy(delta float64) {
	if !s.dragging {
		return
	}
	cur := s.along(s.offset)
	next := cur + delta
	lo, hi := 0.0, s.maxOffset()
	if next < lo || next > hi {
		if !s.bounces {
			next = math.Min(math.Max(next, lo), hi)
		} else {
			slack := s.extent() * rubberBand
			next = cur + delta/2
			next = math.Min(math.Max(next, lo-slack), hi+slack)
		}
	}
	s.moveTo(s.pointAt(next))
}

// EndDrag releases the gesture with velocity in pages per second (positive
// moves forward). The surface decelerates to a page boundary.
func (s *Surface) EndDrag(velocity float64) {
	if !s.dragging {
		return
	}
	s.tracking, s.dragging = false, false

	cur := s.along(s.offset)
	target := math.Min(math.Max(cur, 0), s.maxOffset())
	if ext := s.extent(); ext > 0 {
		pos := cur / ext
		var page float64
		switch {
		case velocity > flickVelocity:
			page = math.Ceil(pos)
		case velocity < -flickVelocity:
			page = math.Floor(pos)
		default:
			page = math.Round(pos)
		}
		target = math.Min(math.Max(page*ext, 0), s.maxOffset())
	}

	if target == cur {
		s.emit(func(l pager.SurfaceEvents) { l.GestureDidEnd(false) })
		return
	}
	s.decel = &motion{from: cur, to: target, duration: s.decelDuration}
	s.emit(func(l pager.SurfaceEvents) { l.GestureDidEnd(true) })
	if s.decelDuration <= 0 {
		s.Advance(0)
	}
}

// Advance steps deceleration and animation by dt. It reports whether
// anything is still moving.
func (s *Surface) Advance(dt time.Duration) bool {
	if m := s.decel; m != nil {
		v, done := m.step(dt)
		s.moveTo(s.pointAt(v))
		if done && s.decel == m {
			s.decel = nil
			s.emit(func(l pager.SurfaceEvents) { l.DecelerationDidEnd() })
		}
	}
	if m := s.anim; m != nil {
		v, done := m.step(dt)
		s.moveTo(s.pointAt(v))
		if done && s.anim == m {
			s.anim = nil
			s.emit(func(l pager.SurfaceEvents) { l.AnimationDidEnd() })
		}
	}
	return s.Moving()
}

// ── Internals ───────────────────────────────────────────────────────────────

func (s *Surface) moveTo(p pager.Point) {
	if p == s.offset {
		return
	}
	s.offset = p
	s.emit(func(l pager.SurfaceEvents) { l.ViewportDidChange() })
}

func (s *Surface) emit(f func(pager.SurfaceEvents)) {
	if s.listener != nil {
		f(s.listener)
	}
}

func (s *Surface) extent() float64 {
	if s.axis == pager.Vertical {
		return s.bounds.H
	}
	return s.bounds.W
}

func (s *Surface) maxOffset() float64 {
	var total float64
	if s.axis == pager.Vertical {
		total = s.content.H
	} else {
		total = s.content.W
	}
	return math.Max(total-s.extent(), 0)
}

func (s *Surface) along(p pager.Point) float64 {
	if s.axis == pager.Vertical {
		return p.Y
	}
	return p.X
}

func (s *Surface) alongRect(r pager.Rect) float64 {
	if s.axis == pager.Vertical {
		return r.Y
	}
	return r.X
}

func (s *Surface) pointAt(v float64) pager.Point {
	if s.axis == pager.Vertical {
		return pager.Point{Y: v}
	}
	return pager.Point{X: v}
}
