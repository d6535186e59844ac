package pager

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeSurface reports offset changes synchronously. Animated sets are held
// until the test calls finishAnimation.
type fakeSurface struct {
	bounds  Size
	offset  Point
	content Size

	tracking, dragging, decelerating bool

	events     SurfaceEvents
	animTarget *Point
	frames     map[*Page]Rect
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{bounds: Size{W: w, H: h}, frames: make(map[*Page]Rect)}
}

func (s *fakeSurface) Bounds() Size          { return s.bounds }
func (s *fakeSurface) Offset() Point         { return s.offset }
func (s *fakeSurface) ContentSize() Size     { return s.content }
func (s *fakeSurface) SetContentSize(c Size) { s.content = c }
func (s *fakeSurface) IsTracking() bool      { return s.tracking }
func (s *fakeSurface) IsDragging() bool      { return s.dragging }
func (s *fakeSurface) IsDecelerating() bool  { return s.decelerating }

func (s *fakeSurface) SetOffset(p Point, animated bool) {
	s.decelerating = false
	if animated {
		s.animTarget = &p
		return
	}
	cancelled := s.animTarget != nil
	s.animTarget = nil
	if s.offset != p {
		s.offset = p
		s.events.ViewportDidChange()
	}
	if cancelled {
		s.events.AnimationDidEnd()
	}
}

// scrollBy simulates a gesture frame.
func (s *fakeSurface) scrollBy(dx float64) {
	s.offset.X += dx
	s.events.ViewportDidChange()
}

func (s *fakeSurface) finishAnimation() {
	target := *s.animTarget
	s.animTarget = nil
	s.offset = target
	s.events.ViewportDidChange()
	s.events.AnimationDidEnd()
}

func (s *fakeSurface) Attach(p *Page, f Rect) { s.frames[p] = f }
func (s *fakeSurface) Place(p *Page, f Rect)  { s.frames[p] = f }
func (s *fakeSurface) Detach(p *Page)         { delete(s.frames, p) }

// trace collects content hooks from every page in order.
type trace struct{ events []string }

func (t *trace) add(format string, args ...any) {
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

func (t *trace) take() []string {
	out := t.events
	t.events = nil
	return out
}

type recordingContent struct {
	name   string
	trace  *trace
	resets int
}

func (r *recordingContent) BeginAppearance(appearing, animated bool) {
	r.trace.add("%s begin appearing=%v animated=%v", r.name, appearing, animated)
}

func (r *recordingContent) EndAppearance() { r.trace.add("%s end", r.name) }

func (r *recordingContent) PrepareForReuse() { r.resets++ }

type recordingDelegate struct {
	NopDelegate
	trace   *trace
	updates int
}

func (d *recordingDelegate) WillBeginShowing(i int, _ *Page) { d.trace.add("will-show %d", i) }
func (d *recordingDelegate) DidFinishShowing(i int, _ *Page) { d.trace.add("did-show %d", i) }
func (d *recordingDelegate) DidStopShowing(i int, _ *Page)   { d.trace.add("did-stop %d", i) }
func (d *recordingDelegate) DidUpdatePosition()              { d.updates++ }
func (d *recordingDelegate) WillBeginGesture()               { d.trace.add("gesture-begin") }
func (d *recordingDelegate) DidEndGesture()                  { d.trace.add("gesture-end") }

type prefetchCall struct{ Start, Cancel []int }

type recordingPrefetcher struct{ calls []prefetchCall }

func (p *recordingPrefetcher) PrefetchWindowChanged(start, cancel []int) {
	p.calls = append(p.calls, prefetchCall{Start: start, Cancel: cancel})
}

// sliceSource serves one page per item, named after the item.
type sliceSource struct {
	items []string
	c     *Container
}

func (s *sliceSource) PageCount() int { return len(s.items) }

func (s *sliceSource) PageAt(i int) *Page {
	p := s.c.DequeueReusable("page")
	p.Content().(*recordingContent).name = s.items[i]
	return p
}

type harness struct {
	c         *Container
	surface   *fakeSurface
	source    *sliceSource
	delegate  *recordingDelegate
	prefetch  *recordingPrefetcher
	trace     *trace
	instances int
}

func newHarness(t *testing.T, items ...string) *harness {
	t.Helper()
	h := &harness{
		surface:  newFakeSurface(100, 40),
		source:   &sliceSource{items: items},
		prefetch: &recordingPrefetcher{},
		trace:    &trace{},
	}
	h.delegate = &recordingDelegate{trace: h.trace}
	h.c = New(h.surface, h.source,
		WithLogger(zaptest.NewLogger(t)),
		WithDelegate(h.delegate),
		WithPrefetcher(h.prefetch))
	h.surface.events = h.c
	h.source.c = h.c
	h.c.Register("page", func() Content {
		h.instances++
		return &recordingContent{trace: h.trace}
	})
	return h
}

// appeared brings the container on screen and reloads at index.
func (h *harness) appeared(t *testing.T, index int) {
	t.Helper()
	h.c.SetAppearance(WillAppear, false)
	h.c.SetAppearance(DidAppear, false)
	var ok bool
	h.c.ReloadData(index, true, func(b bool) { ok = b })
	require.True(t, ok)
	h.trace.take()
	h.delegate.updates = 0
	h.prefetch.calls = nil
}

func (h *harness) current(t *testing.T) Snapshot {
	t.Helper()
	snap, ok := h.c.Current()
	require.True(t, ok, "nothing visible")
	return snap
}

func nameOf(p *Page) string { return p.Content().(*recordingContent).name }

func requireInvariant(t *testing.T, fn func()) *InvariantError {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		fn()
	}()
	require.NotNil(t, got, "expected an invariant violation")
	err, ok := got.(*InvariantError)
	require.Truef(t, ok, "panic value %T is not *InvariantError", got)
	return err
}
