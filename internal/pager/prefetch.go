package pager

import (
	"math"
	"sort"
)

// scrollDirection biases which side of the current position gets prefetched.
type scrollDirection int

const (
	directionNone scrollDirection = iota
	directionForward
	directionBackward
)

func (d scrollDirection) String() string {
	switch d {
	case directionForward:
		return "forward"
	case directionBackward:
		return "backward"
	default:
		return "none"
	}
}

// prefetchWindow is the last window the prefetcher was told about.
type prefetchWindow struct {
	small, big int
	direction  scrollDirection
}

// prefetchState tracks the outstanding prefetch set and diffs it against the
// window around each new position.
type prefetchState struct {
	radius  int
	last    prefetchWindow
	hasLast bool
	pending map[int]struct{}
}

func newPrefetchState(radius int) prefetchState {
	return prefetchState{radius: radius, pending: make(map[int]struct{})}
}

func (ps *prefetchState) setRadius(n int) {
	if n < 0 {
		n = 0
	}
	ps.radius = n
	ps.hasLast = false
}

// update recomputes the window for position and returns the indices that
// newly start and the previously requested ones that fall out of range.
// The pages at floor(position) and ceil(position) are being materialized by
// the layout pass, so they are never part of either list.
func (ps *prefetchState) update(position float64, dir scrollDirection, count int) (start, cancel []int) {
	small := int(math.Floor(position))
	big := int(math.Ceil(position))

	w := prefetchWindow{small: small, big: big, direction: dir}
	if ps.hasLast && ps.last == w {
		return nil, nil
	}
	ps.last = w
	ps.hasLast = true

	lo := max(small-ps.radius, 0)
	hi := min(big+ps.radius, count-1)

	kept := make(map[int]struct{}, len(ps.pending))
	for idx := range ps.pending {
		switch {
		case idx < lo || idx > hi:
			cancel = append(cancel, idx)
		case idx != small && idx != big:
			kept[idx] = struct{}{}
		}
	}

	from, to := lo, hi
	switch dir {
	case directionForward:
		from = max(small, 0)
	case directionBackward:
		to = min(big, count-1)
	}
	for idx := from; idx <= to; idx++ {
		if idx == small || idx == big {
			continue
		}
		if _, ok := kept[idx]; ok {
			continue
		}
		kept[idx] = struct{}{}
		start = append(start, idx)
	}

	ps.pending = kept
	sort.Ints(start)
	sort.Ints(cancel)
	return start, cancel
}

// reset forgets the window and returns whatever was still outstanding.
func (ps *prefetchState) reset() []int {
	out := make([]int, 0, len(ps.pending))
	for idx := range ps.pending {
		out = append(out, idx)
	}
	sort.Ints(out)
	ps.pending = make(map[int]struct{})
	ps.hasLast = false
	return out
}
