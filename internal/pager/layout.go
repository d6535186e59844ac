package pager

import (
	"math"

	"go.uber.org/zap"
)

// extent is the page size along the paging axis.
func (c *Container) extent() float64 {
	b := c.surface.Bounds()
	if c.axis == Vertical {
		return b.H
	}
	return b.W
}

func (c *Container) along(p Point) float64 {
	if c.axis == Vertical {
		return p.Y
	}
	return p.X
}

func (c *Container) pointAt(v float64) Point {
	if c.axis == Vertical {
		return Point{Y: v}
	}
	return Point{X: v}
}

func (c *Container) frame(index int, b Size) Rect {
	if c.axis == Vertical {
		return Rect{X: 0, Y: b.H * float64(index), W: b.W, H: b.H}
	}
	return Rect{X: b.W * float64(index), Y: 0, W: b.W, H: b.H}
}

func sizePoint(s Size) Point { return Point{X: s.W, Y: s.H} }

func clampIndex(i, n int) int {
	return min(max(i, 0), n-1)
}

func (c *Container) visibleAt(index int) *slot {
	if c.major != nil && c.major.index == index {
		return c.major
	}
	if c.minor != nil && c.minor.index == index {
		return c.minor
	}
	return nil
}

// layout recomputes the visible range from the surface offset, swaps pages
// in and out, and reassigns the Major and Minor slots.
func (c *Container) layout() {
	if c.isDisappeared() {
		return
	}
	b := c.surface.Bounds()
	if c.count <= 0 || b.W <= 0 || b.H <= 0 {
		return
	}

	hadPosition := c.major != nil
	previous := c.position
	c.position = c.along(c.surface.Offset()) / c.extent()

	lo := clampIndex(int(math.Floor(c.position)), c.count)
	hi := clampIndex(int(math.Ceil(c.position)), c.count)

	var gone, still, fresh []slot
	for _, s := range c.visibleSlots() {
		if s.index < lo || s.index > hi {
			gone = append(gone, *s)
		}
	}
	for i := lo; i <= hi; i++ {
		if s := c.visibleAt(i); s != nil {
			still = append(still, *s)
			// The bounds may have changed since it was attached.
			c.surface.Place(s.page, c.frame(i, b))
			continue
		}
		fresh = append(fresh, slot{index: i, page: c.materialize(i)})
	}

	if len(gone) > 2 || len(gone)+len(still) > 2 || len(still)+len(fresh) > 2 || len(fresh) > 2 {
		invariantf(c.log, "layout",
			"more than two pages visible: leaving %v, staying %v, entering %v",
			indices(gone), indices(still), indices(fresh))
	}

	animated := c.isTransitioning()
	for i := range gone {
		c.retire(&gone[i], animated)
	}
	for _, s := range fresh {
		c.drive(s.page, None, false)
		c.delegate.WillBeginShowing(s.index, s.page)
		c.surface.Attach(s.page, c.frame(s.index, b))
		s.page.attached = true
	}

	c.delegate.DidUpdatePosition()

	switch len(fresh) {
	case 2:
		// Lower index becomes Major; both are entering.
		c.major = &slot{index: fresh[0].index, page: fresh[0].page}
		c.minor = &slot{index: fresh[1].index, page: fresh[1].page}
		c.drive(c.major.page, WillAppear, animated)
		c.drive(c.minor.page, WillAppear, animated)
	case 1:
		c.major = &slot{index: fresh[0].index, page: fresh[0].page}
		c.drive(c.major.page, WillAppear, animated)
		if len(still) == 1 {
			c.minor = &slot{index: still[0].index, page: still[0].page}
			c.drive(c.minor.page, WillDisappear, animated)
		} else {
			c.minor = nil
		}
	default:
		if len(still) == 1 {
			c.major = &slot{index: still[0].index, page: still[0].page}
			c.minor = nil
		}
	}

	if len(fresh) > 0 || len(gone) > 0 {
		c.log.Debug("layout",
			zap.Float64("position", c.position),
			zap.Ints("entering", indices(fresh)),
			zap.Ints("leaving", indices(gone)))
	}

	if c.prefetcher != nil && hadPosition {
		switch {
		case c.position > previous:
			c.prefetchAt(directionForward, c.position)
		case c.position < previous:
			c.prefetchAt(directionBackward, c.position)
		}
	}
}

// visibleSlots returns the occupied slots in ascending index order.
func (c *Container) visibleSlots() []*slot {
	var out []*slot
	if c.major != nil {
		out = append(out, c.major)
	}
	if c.minor != nil {
		out = append(out, c.minor)
	}
	if len(out) == 2 && out[0].index > out[1].index {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

func (c *Container) materialize(index int) *Page {
	if c.dataSource == nil {
		invariantf(c.log, "layout", "no data source to materialize page %d", index)
	}
	p := c.dataSource.PageAt(index)
	if p == nil || p.content == nil {
		invariantf(c.log, "layout", "data source returned no page for index %d", index)
	}
	if p.attached {
		invariantf(c.log, "layout", "data source returned attached page %s for index %d", p.id, index)
	}
	return p
}

// retire takes a page off the surface and offers it to the reuse pool.
func (c *Container) retire(s *slot, animated bool) {
	if s == nil {
		return
	}
	p := s.page
	c.drive(p, DidDisappear, animated)
	c.surface.Detach(p)
	p.attached = false
	c.delegate.DidStopShowing(s.index, p)
	c.pool.release(p)
}

func (c *Container) prefetchAt(dir scrollDirection, position float64) {
	if c.prefetcher == nil {
		return
	}
	start, cancel := c.prefetch.update(position, dir, c.count)
	if len(start) == 0 && len(cancel) == 0 {
		return
	}
	c.log.Debug("prefetch window changed",
		zap.Stringer("direction", dir),
		zap.Ints("start", start),
		zap.Ints("cancel", cancel))
	c.prefetcher.PrefetchWindowChanged(start, cancel)
}

// resetPrefetch cancels everything outstanding; indices are about to mean
// something else.
func (c *Container) resetPrefetch() {
	pending := c.prefetch.reset()
	if c.prefetcher != nil && len(pending) > 0 {
		c.prefetcher.PrefetchWindowChanged(nil, pending)
	}
}

func indices(slots []slot) []int {
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = s.index
	}
	return out
}
