package pager

import (
	"math"
	"slices"

	"go.uber.org/zap"
)

// shadowSlot follows one visible slot through the edits of a batch. live
// turns false once an edit removes or replaces the content at its index.
type shadowSlot struct {
	index int
	live  bool
}

// batchContext is the renumbered view of the container while edits are
// being collected.
type batchContext struct {
	major, minor *shadowSlot
	position     float64
	count        int

	depth       int
	edits       int
	completions []func(bool)
}

func shadowOf(s *slot) *shadowSlot {
	if s == nil {
		return nil
	}
	return &shadowSlot{index: s.index, live: true}
}

func (b *batchContext) slots() []*shadowSlot {
	var out []*shadowSlot
	for _, s := range []*shadowSlot{b.major, b.minor} {
		if s != nil && s.live {
			out = append(out, s)
		}
	}
	return out
}

// insert applies indices in the numbering after the insertion, ascending.
func (b *batchContext) insert(log *zap.Logger, indices []int) {
	for _, idx := range sortedUnique(indices) {
		if idx < 0 || idx > b.count {
			invariantf(log, "insert", "index %d out of range [0, %d]", idx, b.count)
		}
		for _, s := range b.slots() {
			if s.index >= idx {
				s.index++
			}
		}
		if float64(idx) <= b.position {
			b.position++
		}
		b.count++
		b.edits++
	}
}

// delete applies indices in the numbering before the deletion, descending so
// that each one is still valid when it is reached. Deleting the page at the
// offset steps back to the page before it.
func (b *batchContext) delete(log *zap.Logger, indices []int) {
	idxs := sortedUnique(indices)
	for i := len(idxs) - 1; i >= 0; i-- {
		idx := idxs[i]
		if idx < 0 || idx >= b.count {
			invariantf(log, "delete", "index %d out of range [0, %d)", idx, b.count)
		}
		for _, s := range b.slots() {
			switch {
			case s.index == idx:
				s.live = false
			case s.index > idx:
				s.index--
			}
		}
		if float64(idx) <= b.position {
			b.position--
		}
		b.count--
		b.edits++
	}
}

// move relocates one page. A slot showing from follows it to to.
func (b *batchContext) move(log *zap.Logger, from, to int) {
	if from < 0 || from >= b.count || to < 0 || to >= b.count {
		invariantf(log, "move", "move %d -> %d out of range [0, %d)", from, to, b.count)
	}
	b.edits++
	if from == to {
		return
	}
	mapIndex := func(i int) int {
		if i == from {
			return to
		}
		if i > from {
			i--
		}
		if i >= to {
			i++
		}
		return i
	}
	for _, s := range b.slots() {
		s.index = mapIndex(s.index)
	}
	whole, frac := math.Modf(b.position)
	if whole >= 0 && int(whole) < b.count {
		b.position = float64(mapIndex(int(whole))) + frac
	}
}

// reload marks indices whose content changed; visible ones are replaced.
func (b *batchContext) reload(log *zap.Logger, indices []int) {
	for _, idx := range sortedUnique(indices) {
		if idx < 0 || idx >= b.count {
			invariantf(log, "reload", "index %d out of range [0, %d)", idx, b.count)
		}
		for _, s := range b.slots() {
			if s.index == idx {
				s.live = false
			}
		}
		b.edits++
	}
}

func sortedUnique(indices []int) []int {
	out := slices.Clone(indices)
	slices.Sort(out)
	return slices.Compact(out)
}

// ── Public edit API ─────────────────────────────────────────────────────────

// Insert tells the container that pages were inserted at indices, given in
// the numbering after the insertion. The data source must already report
// the new count.
func (c *Container) Insert(indices ...int) {
	c.edit(func(b *batchContext) { b.insert(c.log, indices) })
}

// Delete tells the container that the pages at indices, given in the
// numbering before the deletion, are gone.
func (c *Container) Delete(indices ...int) {
	c.edit(func(b *batchContext) { b.delete(c.log, indices) })
}

// Move tells the container that the page at from now lives at to.
func (c *Container) Move(from, to int) {
	c.edit(func(b *batchContext) { b.move(c.log, from, to) })
}

// Reload tells the container that the content at indices changed. Visible
// pages among them are replaced by freshly materialized ones.
func (c *Container) Reload(indices ...int) {
	c.edit(func(b *batchContext) { b.reload(c.log, indices) })
}

// ReloadAll is ReloadData(0, true, nil).
func (c *Container) ReloadAll() { c.ReloadData(0, true, nil) }

// PerformBatch runs body, collecting every edit it makes, then validates the
// result against the data source and runs a single layout pass. Batches
// nest; the outermost one applies everything and then reports to every
// completion.
func (c *Container) PerformBatch(body func(), completion func(bool)) {
	b := c.openBatch()
	if completion != nil {
		b.completions = append(b.completions, completion)
	}
	if body != nil {
		body()
	}
	c.closeBatch()
}

func (c *Container) edit(apply func(b *batchContext)) {
	b := c.openBatch()
	apply(b)
	c.closeBatch()
}

func (c *Container) openBatch() *batchContext {
	if c.batch != nil {
		c.batch.depth++
		return c.batch
	}
	position := c.position
	if ext := c.extent(); ext > 0 {
		position = c.along(c.surface.Offset()) / ext
	}
	c.batch = &batchContext{
		major:    shadowOf(c.major),
		minor:    shadowOf(c.minor),
		position: position,
		count:    c.count,
	}
	return c.batch
}

func (c *Container) closeBatch() {
	b := c.batch
	if b.depth > 0 {
		b.depth--
		return
	}
	c.batch = nil

	if n := c.pageCount(); n != b.count {
		invariantf(c.log, "batch",
			"data source reports %d pages, expected %d after %d edits on %d",
			n, b.count, b.edits, c.count)
	}
	c.log.Debug("applying edits",
		zap.Int("edits", b.edits),
		zap.Int("count_before", c.count),
		zap.Int("count_after", b.count))

	// Outstanding prefetch indices use the old numbering.
	c.resetPrefetch()

	c.major = c.reconcile(c.major, b.major)
	c.minor = c.reconcile(c.minor, b.minor)
	if c.major == nil && c.minor != nil {
		c.major, c.minor = c.minor, nil
	}

	c.count = b.count
	c.position = 0
	if b.count > 0 {
		c.position = math.Min(math.Max(b.position, 0), float64(b.count-1))
	}
	c.updateContentSize()
	c.moveQuietly(c.pointAt(c.position * c.extent()))
	c.layout()
	c.settle()
	if c.count > 0 {
		c.prefetchAt(directionNone, c.position)
	}

	for _, done := range b.completions {
		done(true)
	}
}

// reconcile keeps a slot under its new index, or retires it when an edit
// invalidated it.
func (c *Container) reconcile(s *slot, shadow *shadowSlot) *slot {
	if s == nil {
		return nil
	}
	if shadow == nil || !shadow.live {
		c.retire(s, false)
		return nil
	}
	return &slot{index: shadow.index, page: s.page}
}
