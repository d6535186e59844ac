package surface

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
)

type recorder struct{ events []string }

func (r *recorder) ViewportDidChange()       { r.events = append(r.events, "viewport") }
func (r *recorder) GestureWillBegin()        { r.events = append(r.events, "gesture-begin") }
func (r *recorder) GestureDidEnd(dec bool) {
	if dec {
		r.events = append(r.events, "gesture-end decelerate")
		return
	}
	r.events = append(r.events, "gesture-end")
}
func (r *recorder) DecelerationDidEnd() { r.events = append(r.events, "deceleration-end") }
func (r *recorder) AnimationDidEnd()    { r.events = append(r.events, "animation-end") }

func newTestSurface(opts ...Option) (*Surface, *recorder) {
	s := New(pager.Horizontal, 80, 20, opts...)
	s.SetContentSize(pager.Size{W: 400, H: 20})
	r := &recorder{}
	s.SetListener(r)
	return s, r
}

func TestSetOffsetImmediate(t *testing.T) {
	s, r := newTestSurface()
	s.SetOffset(pager.Point{X: 160}, false)
	s.SetOffset(pager.Point{X: 160}, false)
	assert.Equal(t, pager.Point{X: 160}, s.Offset())
	assert.Equal(t, []string{"viewport"}, r.events, "unchanged offsets are not reported")
}

func TestAnimatedSetOffset(t *testing.T) {
	s, r := newTestSurface(WithAnimation(100 * time.Millisecond))
	s.SetOffset(pager.Point{X: 160}, true)
	assert.True(t, s.Moving())
	assert.Empty(t, r.events)

	assert.True(t, s.Advance(50*time.Millisecond))
	x := s.Offset().X
	assert.Greater(t, x, 80.0, "ease out covers most of the distance early")
	assert.Less(t, x, 160.0)

	assert.False(t, s.Advance(60*time.Millisecond))
	assert.Equal(t, pager.Point{X: 160}, s.Offset())
	assert.Equal(t, []string{"viewport", "viewport", "animation-end"}, r.events)
}

func TestZeroDurationAnimationCompletesInPlace(t *testing.T) {
	s, r := newTestSurface(WithAnimation(0))
	s.SetOffset(pager.Point{X: 80}, true)
	assert.False(t, s.Moving())
	assert.Equal(t, []string{"viewport", "animation-end"}, r.events)
}

func TestImmediateSetCancelsAnimation(t *testing.T) {
	s, r := newTestSurface()
	s.SetOffset(pager.Point{X: 320}, true)
	s.SetOffset(pager.Point{X: 80}, false)
	assert.False(t, s.Moving())
	assert.Equal(t, pager.Point{X: 80}, s.Offset())
	assert.Equal(t, []string{"viewport", "animation-end"}, r.events)
}

func TestDragSnapsToNearestPage(t *testing.T) {
	s, r := newTestSurface(WithDeceleration(40 * time.Millisecond))
	require.True(t, s.BeginDrag())
	assert.True(t, s.IsTracking())
	s.DragBy(30)
	s.EndDrag(0)
	assert.False(t, s.IsTracking())
	assert.True(t, s.IsDecelerating())

	for s.Advance(16 * time.Millisecond) {
	}
	assert.Equal(t, pager.Point{X: 0}, s.Offset(), "30 of 80 rounds back")
	want := []string{"gesture-begin", "viewport", "gesture-end decelerate", "viewport", "viewport", "viewport", "deceleration-end"}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestFlickAdvancesPage(t *testing.T) {
	s, _ := newTestSurface(WithDeceleration(0))
	s.BeginDrag()
	s.DragBy(10)
	s.EndDrag(2)
	assert.Equal(t, pager.Point{X: 80}, s.Offset())
	assert.False(t, s.IsDecelerating())

	s.BeginDrag()
	s.DragBy(-10)
	s.EndDrag(-2)
	assert.Equal(t, pager.Point{X: 0}, s.Offset())
}

func TestDragEndingOnPage(t *testing.T) {
	s, r := newTestSurface()
	s.BeginDrag()
	s.DragBy(80)
	s.EndDrag(0)
	assert.False(t, s.Moving())
	assert.Equal(t, []string{"gesture-begin", "viewport", "gesture-end"}, r.events)
}

func TestEdges(t *testing.T) {
	t.Run("bounces", func(t *testing.T) {
		s, _ := newTestSurface(WithDeceleration(0))
		s.BeginDrag()
		s.DragBy(-200)
		assert.Equal(t, -20.0, s.Offset().X, "pull is capped at a quarter page")
		s.EndDrag(0)
		assert.Equal(t, 0.0, s.Offset().X)
	})
	t.Run("clamped", func(t *testing.T) {
		s, _ := newTestSurface(WithBounces(false))
		require.False(t, s.Bounces())
		s.BeginDrag()
		s.DragBy(1000)
		assert.Equal(t, 320.0, s.Offset().X)
	})
}

func TestScrollDisabled(t *testing.T) {
	s, r := newTestSurface()
	s.SetScrollEnabled(false)
	require.False(t, s.ScrollEnabled())
	assert.False(t, s.BeginDrag())
	s.DragBy(40)
	s.EndDrag(0)
	assert.Zero(t, s.Offset().X)
	assert.Empty(t, r.events)
}

func TestDragInterruptsAnimation(t *testing.T) {
	s, r := newTestSurface()
	s.SetOffset(pager.Point{X: 240}, true)
	s.Advance(10 * time.Millisecond)
	s.BeginDrag()
	assert.False(t, s.Moving())
	assert.Equal(t, []string{"viewport", "animation-end", "gesture-begin"}, r.events)
}

func TestVisibleOrdered(t *testing.T) {
	s := New(pager.Vertical, 40, 10)
	a := pager.NewPage(nopContent{})
	b := pager.NewPage(nopContent{})
	s.Attach(b, pager.Rect{Y: 10, W: 40, H: 10})
	s.Attach(a, pager.Rect{Y: 0, W: 40, H: 10})

	vis := s.Visible()
	require.Len(t, vis, 2)
	assert.Same(t, a, vis[0].Page)
	assert.Same(t, b, vis[1].Page)

	s.Detach(a)
	_, ok := s.Frame(a)
	assert.False(t, ok)
}

type nopContent struct{}

func (nopContent) BeginAppearance(bool, bool) {}
func (nopContent) EndAppearance()             {}

// ── With a container ────────────────────────────────────────────────────────

type pages struct {
	n int
	c *pager.Container
}

func (p *pages) PageCount() int         { return p.n }
func (p *pages) PageAt(int) *pager.Page { return p.c.DequeueReusable("p") }

func TestContainerFollowsDrag(t *testing.T) {
	s := New(pager.Horizontal, 80, 20, WithDeceleration(30*time.Millisecond))
	src := &pages{n: 4}
	c := pager.New(s, src)
	src.c = c
	s.SetListener(c)
	c.Register("p", func() pager.Content { return nopContent{} })
	c.SetAppearance(pager.WillAppear, false)
	c.SetAppearance(pager.DidAppear, false)
	c.ReloadData(0, true, nil)

	s.BeginDrag()
	s.DragBy(50)
	snap, ok := c.Current()
	require.True(t, ok)
	assert.True(t, snap.Transitioning)
	assert.Len(t, s.Visible(), 2)

	s.EndDrag(0)
	for s.Advance(10 * time.Millisecond) {
	}
	snap, _ = c.Current()
	assert.Equal(t, 1, snap.Index)
	assert.Nil(t, snap.Minor)
	assert.Equal(t, pager.DidAppear, snap.Major.Appearance())
	assert.Len(t, s.Visible(), 1)
}

func TestContainerAnimatedScroll(t *testing.T) {
	s := New(pager.Horizontal, 80, 20, WithAnimation(40*time.Millisecond))
	src := &pages{n: 4}
	c := pager.New(s, src)
	src.c = c
	s.SetListener(c)
	c.Register("p", func() pager.Content { return nopContent{} })
	c.SetAppearance(pager.DidAppear, false)
	c.ReloadData(0, true, nil)

	var results []bool
	c.ScrollTo(3, true, func(ok bool) { results = append(results, ok) })
	for s.Advance(10 * time.Millisecond) {
	}
	assert.Equal(t, []bool{true}, results)
	snap, _ := c.Current()
	assert.Equal(t, 3, snap.Index)

	c.ScrollTo(0, true, func(ok bool) { results = append(results, ok) })
	s.Advance(10 * time.Millisecond)
	s.BeginDrag()
	assert.Equal(t, []bool{true, false}, results, "a drag interrupts the animation")
}

func TestSetOffsetStopsDeceleration(t *testing.T) {
	for _, animated := range []bool{false, true} {
		t.Run(fmt.Sprintf("animated=%v", animated), func(t *testing.T) {
			s, r := newTestSurface(WithDeceleration(100*time.Millisecond), WithAnimation(50*time.Millisecond))
			s.BeginDrag()
			s.DragBy(30)
			s.EndDrag(2)
			require.True(t, s.IsDecelerating())
			s.Advance(20 * time.Millisecond)

			s.SetOffset(pager.Point{X: 320}, animated)
			assert.False(t, s.IsDecelerating())
			for i := 0; s.Advance(16*time.Millisecond); i++ {
				require.Less(t, i, 100, "surface never came to rest")
			}
			assert.Equal(t, pager.Point{X: 320}, s.Offset())
			assert.NotContains(t, r.events, "deceleration-end")
		})
	}
}
