package pager

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchInsertThenDelete(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d", "e")
	h.appeared(t, 2)
	shown := h.current(t).Major

	h.source.items = []string{"x", "b", "c", "d", "e"}
	var ok bool
	h.c.PerformBatch(func() {
		h.c.Insert(0)
		h.c.Delete(1)
	}, func(b bool) { ok = b })

	require.True(t, ok)
	assert.Equal(t, 1, h.delegate.updates, "one layout pass for the whole batch")
	snap := h.current(t)
	assert.Equal(t, 2, snap.Index)
	assert.Same(t, shown, snap.Major)
	assert.Equal(t, Point{X: 200}, h.surface.offset)
	assert.Equal(t, []prefetchCall{
		{Cancel: []int{1, 3}},
		{Start: []int{1, 3}},
	}, h.prefetch.calls)
}

func TestDeleteVisiblePage(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d", "e")
	h.appeared(t, 2)

	h.source.items = []string{"a", "b", "d", "e"}
	h.c.Delete(2)

	want := []string{
		"c begin appearing=false animated=false",
		"c end",
		"did-stop 2",
		"will-show 1",
		"b begin appearing=true animated=false",
		"b end",
		"did-show 1",
	}
	if diff := cmp.Diff(want, h.trace.take()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	snap := h.current(t)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "b", nameOf(snap.Major))
	assert.Equal(t, Point{X: 100}, h.surface.offset)
	assert.Equal(t, Size{W: 400, H: 40}, h.surface.content)
}

func TestDeleteBeforeVisiblePage(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d", "e")
	h.appeared(t, 3)
	shown := h.current(t).Major

	h.source.items = []string{"b", "c", "d", "e"}
	h.c.Delete(0)

	snap := h.current(t)
	assert.Equal(t, 2, snap.Index)
	assert.Same(t, shown, snap.Major)
	assert.Equal(t, Point{X: 200}, h.surface.offset)
	assert.Equal(t, []string{"did-show 2"}, h.trace.take())
}

func TestDeleteLastPageClampsPosition(t *testing.T) {
	h := newHarness(t, "a", "b", "c")
	h.appeared(t, 2)

	h.source.items = []string{"a", "b"}
	h.c.Delete(2)

	snap := h.current(t)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "b", nameOf(snap.Major))
	assert.Equal(t, Point{X: 100}, h.surface.offset)
}

func TestDeleteEverything(t *testing.T) {
	h := newHarness(t, "a")
	h.appeared(t, 0)

	h.source.items = nil
	h.c.Delete(0)
	_, visible := h.c.Current()
	assert.False(t, visible)
	assert.Zero(t, h.c.Count())
	assert.Empty(t, h.surface.frames)

	h.source.items = []string{"z"}
	h.c.Insert(0)
	snap := h.current(t)
	assert.Equal(t, "z", nameOf(snap.Major))
	assert.Equal(t, DidAppear, snap.Major.Appearance())
}

func TestInsertShiftsVisiblePage(t *testing.T) {
	tests := []struct {
		name    string
		items   []string
		indices []int
		want    int
	}{
		{name: "at index", items: []string{"a", "x", "b", "c"}, indices: []int{1}, want: 2},
		{name: "before", items: []string{"x", "a", "b", "c"}, indices: []int{0}, want: 2},
		{name: "after", items: []string{"a", "b", "x", "c"}, indices: []int{2}, want: 1},
		{name: "several", items: []string{"x", "y", "a", "b", "c"}, indices: []int{1, 0}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "a", "b", "c")
			h.appeared(t, 1)
			shown := h.current(t).Major

			h.source.items = tt.items
			h.c.Insert(tt.indices...)

			snap := h.current(t)
			assert.Equal(t, tt.want, snap.Index)
			assert.Same(t, shown, snap.Major)
			assert.Equal(t, "b", nameOf(snap.Major))
		})
	}
}

func TestDeleteSeveral(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d")
	h.appeared(t, 2)

	h.source.items = []string{"c", "d"}
	h.c.Delete(1, 0)

	snap := h.current(t)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, "c", nameOf(snap.Major))
}

func TestMoveCarriesVisiblePage(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d", "e")
	h.appeared(t, 1)
	shown := h.current(t).Major

	h.source.items = []string{"a", "c", "d", "b", "e"}
	h.c.Move(1, 3)

	snap := h.current(t)
	assert.Equal(t, 3, snap.Index)
	assert.Same(t, shown, snap.Major)
	assert.Equal(t, Point{X: 300}, h.surface.offset)
}

func TestMoveAcrossVisiblePage(t *testing.T) {
	h := newHarness(t, "a", "b", "c", "d", "e")
	h.appeared(t, 2)

	h.source.items = []string{"b", "c", "d", "e", "a"}
	h.c.Move(0, 4)

	snap := h.current(t)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "c", nameOf(snap.Major))
}

func TestReloadVisiblePage(t *testing.T) {
	h := newHarness(t, "a", "b", "c")
	h.appeared(t, 1)

	h.source.items = []string{"a", "B", "c"}
	h.c.Reload(1)
	snap := h.current(t)
	assert.Equal(t, "B", nameOf(snap.Major))
	assert.Equal(t, DidAppear, snap.Major.Appearance())

	h.trace.take()
	h.c.Reload(0, 2)
	assert.Equal(t, []string{"did-show 1"}, h.trace.take(), "off-screen reloads leave the page alone")
}

func TestNestedBatches(t *testing.T) {
	h := newHarness(t, "a", "b")
	h.appeared(t, 0)

	h.source.items = []string{"x", "a", "b", "y"}
	var order []string
	h.c.PerformBatch(func() {
		h.c.PerformBatch(func() { h.c.Insert(0) }, func(ok bool) {
			order = append(order, "inner")
			assert.True(t, ok)
		})
		assert.Zero(t, h.delegate.updates, "nothing is applied before the outer batch closes")
		h.c.Insert(3)
	}, func(ok bool) {
		order = append(order, "outer")
		assert.True(t, ok)
	})

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, h.delegate.updates)
	snap := h.current(t)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "a", nameOf(snap.Major))
	assert.Equal(t, 4, h.c.Count())
}

func TestBatchCountMismatch(t *testing.T) {
	h := newHarness(t, "a", "b")
	h.appeared(t, 0)
	err := requireInvariant(t, func() { h.c.Insert(0) })
	assert.Equal(t, "batch", err.Op)
}

func TestEditIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		op   string
		edit func(c *Container)
	}{
		{name: "insert", op: "insert", edit: func(c *Container) { c.Insert(3) }},
		{name: "delete", op: "delete", edit: func(c *Container) { c.Delete(2) }},
		{name: "move", op: "move", edit: func(c *Container) { c.Move(0, 2) }},
		{name: "reload", op: "reload", edit: func(c *Container) { c.Reload(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "a", "b")
			h.appeared(t, 0)
			err := requireInvariant(t, func() { tt.edit(h.c) })
			assert.Equal(t, tt.op, err.Op)
		})
	}
}

func TestEditsWhileOffScreen(t *testing.T) {
	h := newHarness(t, "a", "b", "c")
	h.appeared(t, 2)
	h.c.SetAppearance(DidDisappear, false)

	h.source.items = []string{"b", "c"}
	h.c.Delete(0)
	assert.Equal(t, 2, h.c.Count())

	h.c.SetAppearance(WillAppear, false)
	h.c.SetAppearance(DidAppear, false)
	snap := h.current(t)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "c", nameOf(snap.Major))
	assert.Equal(t, DidAppear, snap.Major.Appearance())
}
