// Package pager implements a paging container: a state machine that keeps
// one page (two while a transition is in flight) of an ordered collection
// attached to a scrolling surface, materializes pages lazily, recycles
// released ones, and keeps every page's appear/disappear lifecycle in step
// with what is actually visible.
//
// Every entry point runs on the caller's goroutine and the container does no
// locking of its own; the host must serialize calls (a Bubbletea Update loop
// does this naturally).
package pager

import (
	"math"

	"go.uber.org/zap"
)

// slot is a visible page and the collection index it shows.
type slot struct {
	index int
	page  *Page
}

// correctionState guards programmatic offset changes against the surface's
// own feedback events.
type correctionState int

const (
	correctionNone correctionState = iota
	correctionSetting
	correctionSet
)

type offsetCorrection struct {
	state  correctionState
	target Point
}

// pendingScroll is an animated ScrollTo waiting for the surface to finish.
type pendingScroll struct {
	target Point
	done   func(bool)
}

// Snapshot describes what the container currently shows.
type Snapshot struct {
	Transitioning bool
	Index         int
	Major         *Page
	// Minor is nil unless a transition is in flight.
	Minor      *Page
	MinorIndex int
	// Position is the offset in page extents, in [0, count-1] at rest.
	Position float64
}

// Container is the paging state machine. Create one with New.
type Container struct {
	axis       Axis
	surface    Surface
	dataSource DataSource
	delegate   Delegate
	prefetcher Prefetcher
	log        *zap.Logger

	appearance AppearanceState
	count      int
	position   float64

	major *slot
	minor *slot

	pool     *reusePool
	prefetch prefetchState

	offsetFix      offsetCorrection
	suppressLayout bool
	animation      *pendingScroll
	// gesturing is set from GestureWillBegin until the settle that reports
	// DidEndGesture, which may come from a programmatic move.
	gesturing bool
	batch          *batchContext
}

var _ SurfaceEvents = (*Container)(nil)

// Option configures a Container.
type Option func(*Container)

// WithAxis selects the paging axis. Horizontal is the default.
func WithAxis(a Axis) Option { return func(c *Container) { c.axis = a } }

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDelegate sets the delegate.
func WithDelegate(d Delegate) Option { return func(c *Container) { c.SetDelegate(d) } }

// WithPrefetcher sets the prefetch collaborator.
func WithPrefetcher(p Prefetcher) Option { return func(c *Container) { c.prefetcher = p } }

// WithPrefetchPageNumber sets how many pages beyond the visible ones are
// prefetched. The default is 1.
func WithPrefetchPageNumber(n int) Option {
	return func(c *Container) { c.prefetch.setRadius(n) }
}

// New creates a container driving surface. ds may be nil and set later with
// SetDataSource, but must be present before any page is materialized.
func New(surface Surface, ds DataSource, opts ...Option) *Container {
	c := &Container{
		surface:    surface,
		dataSource: ds,
		delegate:   NopDelegate{},
		log:        zap.NewNop(),
		prefetch:   newPrefetchState(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("pager")
	c.pool = newReusePool(c.log)
	return c
}

// ── Collaborators ───────────────────────────────────────────────────────────

// SetDataSource replaces the data source. Call ReloadData afterwards.
func (c *Container) SetDataSource(ds DataSource) { c.dataSource = ds }

// SetDelegate replaces the delegate; nil restores the no-op default.
func (c *Container) SetDelegate(d Delegate) {
	if d == nil {
		d = NopDelegate{}
	}
	c.delegate = d
}

// SetPrefetcher replaces the prefetch collaborator; nil disables prefetching.
func (c *Container) SetPrefetcher(p Prefetcher) { c.prefetcher = p }

// SetPrefetchPageNumber changes the prefetch radius and forgets the
// remembered window so the next update always reports.
func (c *Container) SetPrefetchPageNumber(n int) { c.prefetch.setRadius(n) }

// PrefetchPageNumber returns the prefetch radius.
func (c *Container) PrefetchPageNumber() int { return c.prefetch.radius }

// ── Reuse ───────────────────────────────────────────────────────────────────

// Register binds a factory to a reuse identifier. Last registration wins.
func (c *Container) Register(identifier string, f Factory) {
	c.pool.register(identifier, f)
}

// RegisterResource binds a resource-backed factory to a reuse identifier.
func (c *Container) RegisterResource(identifier string, f ResourceFactory, resource string) {
	c.pool.register(identifier, func() Content { return f(resource) })
}

// DequeueReusable returns a released page for identifier, oldest first, or
// builds a new one. An unregistered identifier is an InvariantError.
func (c *Container) DequeueReusable(identifier string) *Page {
	return c.pool.dequeue(identifier)
}

// PooledCount reports how many released pages wait under identifier.
func (c *Container) PooledCount(identifier string) int { return c.pool.size(identifier) }

// ReceiveMemoryWarning drops every pooled page.
func (c *Container) ReceiveMemoryWarning() { c.pool.clear() }

// ── State queries ───────────────────────────────────────────────────────────

// Axis returns the paging axis.
func (c *Container) Axis() Axis { return c.axis }

// Count is the number of pages the container currently believes exist.
func (c *Container) Count() int { return c.count }

// Position is the last computed offset in page extents.
func (c *Container) Position() float64 { return c.position }

// Appearance is the container's own lifecycle state.
func (c *Container) Appearance() AppearanceState { return c.appearance }

// Current reports the visible pages. ok is false while nothing is shown.
func (c *Container) Current() (snap Snapshot, ok bool) {
	if c.major == nil {
		return Snapshot{}, false
	}
	snap = Snapshot{
		Transitioning: c.isTransitioning(),
		Index:         c.major.index,
		Major:         c.major.page,
		MinorIndex:    -1,
		Position:      c.position,
	}
	if c.minor != nil {
		snap.Minor = c.minor.page
		snap.MinorIndex = c.minor.index
	}
	return snap, true
}

// ProgressInTotal converts a page position into a 0..1 fraction of the whole
// scrollable range. ok is false when the content does not scroll.
func (c *Container) ProgressInTotal(position float64) (float64, bool) {
	ext := c.extent()
	scrollable := c.along(sizePoint(c.surface.ContentSize())) - ext
	if scrollable <= 0 {
		return 0, false
	}
	return position * ext / scrollable, true
}

func (c *Container) isTransitioning() bool {
	return c.surface.IsTracking() || c.surface.IsDragging() ||
		c.surface.IsDecelerating() || c.animation != nil
}

func (c *Container) isDisappeared() bool {
	return c.appearance == None || c.appearance == DidDisappear
}

func (c *Container) pageCount() int {
	if c.dataSource == nil {
		return 0
	}
	return c.dataSource.PageCount()
}

// ── Host lifecycle ──────────────────────────────────────────────────────────

// SetAppearance forwards the host's will/did appear/disappear for the
// container itself. The Major page follows when the surface is at rest.
func (c *Container) SetAppearance(state AppearanceState, animated bool) {
	c.appearance = state
	c.syncMajorAppearance(animated)
	if state == WillAppear {
		// Layout is a no-op while disappeared, so catch up now.
		c.layout()
	}
}

func (c *Container) syncMajorAppearance(animated bool) {
	if c.isTransitioning() {
		return
	}
	if c.minor != nil {
		invariantf(c.log, "appearance", "minor page %d present while at rest", c.minor.index)
	}
	if c.major != nil {
		c.drive(c.major.page, c.appearance, animated)
	}
}

// drive applies the container-level guards before moving a page.
func (c *Container) drive(p *Page, to AppearanceState, animated bool) {
	switch {
	case to == None:
		p.transition(None, animated)
	case c.isDisappeared():
		p.transition(DidDisappear, animated)
	case c.appearance != DidAppear:
		// DidAppear waits until the container itself has appeared.
		if to != DidAppear {
			p.transition(to, animated)
		}
	default:
		p.transition(to, animated)
	}
}

// Relayout must be called after the surface bounds change. It re-centres
// the offset on the nearest page for the new extent and forces a layout
// pass so frames follow the new size.
func (c *Container) Relayout() {
	ext := c.extent()
	if ext > 0 && c.count > 0 {
		idx := clampIndex(int(math.Round(c.position)), c.count)
		c.moveQuietly(c.pointAt(float64(idx) * ext))
	}
	c.updateContentSize()
	c.layout()
}

// ── Surface events ──────────────────────────────────────────────────────────

// ViewportDidChange handles an offset change reported by the surface.
func (c *Container) ViewportDidChange() {
	switch c.offsetFix.state {
	case correctionSetting:
		// The first report after a programmatic set is accurate. While a
		// gesture is tracking, the next one may not be.
		if c.surface.IsTracking() {
			c.offsetFix.state = correctionSet
		} else {
			c.offsetFix.state = correctionNone
		}
	case correctionSet:
		// Correcting on the first report has no effect, so it happens here.
		target := c.offsetFix.target
		c.offsetFix = offsetCorrection{}
		c.surface.SetOffset(target, false)
		return
	}
	if c.suppressLayout {
		return
	}
	c.layout()
}

// GestureWillBegin handles the start of a user drag.
func (c *Container) GestureWillBegin() {
	c.gesturing = true
	c.delegate.WillBeginGesture()
}

// GestureDidEnd handles the end of a drag. With decelerate set the surface
// keeps moving and reports DecelerationDidEnd later.
func (c *Container) GestureDidEnd(decelerate bool) {
	if !decelerate {
		c.settle()
	}
}

// DecelerationDidEnd handles the surface coming to rest after a drag.
func (c *Container) DecelerationDidEnd() {
	c.settle()
}

// AnimationDidEnd handles the end (or cancellation) of an animated offset
// change and resolves the pending ScrollTo completion.
func (c *Container) AnimationDidEnd() {
	p := c.animation
	if p == nil {
		return
	}
	c.animation = nil
	if c.surface.Offset() != p.target {
		c.log.Debug("animated scroll superseded", zap.Any("target", p.target))
		p.done(false)
		return
	}
	c.settle()
	p.done(true)
}

// settle runs once the surface is at rest: exactly one Major page must be
// left, which now fully appears. A gesture still open ends here.
func (c *Container) settle() {
	if c.isTransitioning() || c.isDisappeared() {
		return
	}
	if c.minor != nil {
		invariantf(c.log, "settle", "minor page %d still present at rest (major %v)", c.minor.index, c.major != nil)
	}
	if c.major == nil {
		return
	}
	if c.gesturing {
		c.gesturing = false
		c.delegate.DidEndGesture()
	}
	c.drive(c.major.page, DidAppear, false)
	c.delegate.DidFinishShowing(c.major.index, c.major.page)
	c.offsetFix = offsetCorrection{}
	c.animation = nil
}

// ── Programmatic moves ──────────────────────────────────────────────────────

// ReloadData re-reads the count from the data source, detaches every visible
// page and shows index. Without forceRefresh, a container already resting on
// index with an unchanged count is left alone.
func (c *Container) ReloadData(index int, forceRefresh bool, completion func(bool)) {
	done := orNop(completion)
	n := c.pageCount()
	if index < 0 || index >= n {
		c.log.Debug("reload rejected", zap.Int("index", index), zap.Int("count", n))
		done(false)
		return
	}
	if !forceRefresh && n == c.count && c.restingOn(index) {
		done(true)
		return
	}

	c.supersedeAnimation()
	c.retire(c.major, false)
	c.retire(c.minor, false)
	c.major, c.minor = nil, nil
	c.count = n
	c.resetPrefetch()
	c.updateContentSize()
	c.ScrollTo(index, false, done)
}

// ScrollTo moves to index. The completion reports false for an invalid
// index, for an animated request while a gesture is tracking, and for an
// animated move that something else interrupted.
func (c *Container) ScrollTo(index int, animated bool, completion func(bool)) {
	done := orNop(completion)
	if index < 0 || index >= c.count {
		c.log.Debug("scroll rejected: index out of range", zap.Int("index", index), zap.Int("count", c.count))
		done(false)
		return
	}
	if c.major != nil && c.minor == nil && c.major.index == index {
		c.prefetchAt(directionNone, float64(index))
		done(true)
		return
	}
	if animated && c.surface.IsTracking() {
		c.log.Debug("scroll rejected: gesture tracking", zap.Int("index", index))
		done(false)
		return
	}

	current := c.surface.Offset()
	target := c.pointAt(float64(index) * c.extent())
	if target == current {
		// No change means no surface callback, so settle here.
		c.layout()
		c.settle()
		c.prefetchAt(directionNone, float64(index))
		done(true)
		return
	}

	c.supersedeAnimation()
	if animated {
		c.animation = &pendingScroll{target: target, done: done}
	} else {
		c.offsetFix = offsetCorrection{state: correctionSetting, target: target}
	}
	c.surface.SetOffset(target, animated)

	if !animated {
		c.settle()
		c.prefetchAt(directionNone, float64(index))
		done(true)
	}
}

func (c *Container) restingOn(index int) bool {
	return c.major != nil && c.minor == nil && c.major.index == index && !c.isTransitioning()
}

func (c *Container) supersedeAnimation() {
	if p := c.animation; p != nil {
		c.animation = nil
		p.done(false)
	}
}

// moveQuietly sets the offset without letting the feedback event run a
// layout pass; the caller runs exactly one afterwards.
func (c *Container) moveQuietly(target Point) {
	if c.surface.Offset() == target {
		return
	}
	c.offsetFix = offsetCorrection{state: correctionSetting, target: target}
	c.suppressLayout = true
	c.surface.SetOffset(target, false)
	c.suppressLayout = false
}

func (c *Container) updateContentSize() {
	b := c.surface.Bounds()
	n := float64(c.count)
	var s Size
	switch c.axis {
	case Vertical:
		s = Size{W: b.W, H: b.H * n}
	default:
		s = Size{W: b.W * n, H: b.H}
	}
	c.suppressLayout = true
	c.surface.SetContentSize(s)
	c.suppressLayout = false
}

func orNop(f func(bool)) func(bool) {
	if f == nil {
		return func(bool) {}
	}
	return f
}
