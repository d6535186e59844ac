// Package replay drives a pager from a scripted sequence of host calls and
// records everything the pager reports back. Scripts are JSON with comments
// and trailing commas allowed.
package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
	"github.com/Akashdeep-Patra/zed-page-view/internal/surface"
)

// Script is a replay file.
type Script struct {
	// Pages is the initial page count. Pages are named p0, p1, ...
	Pages          int    `json:"pages"`
	Axis           string `json:"axis"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Prefetch       int    `json:"prefetch"`
	AnimationMS    int    `json:"animation_ms"`
	DecelerationMS int    `json:"deceleration_ms"`
	Bounces        *bool  `json:"bounces"`
	ScrollEnabled  *bool  `json:"scroll_enabled"`
	Steps          []Step `json:"steps"`
}

// Step is one host call.
type Step struct {
	Op       string  `json:"op"`
	Index    int     `json:"index"`
	Indices  []int   `json:"indices"`
	From     int     `json:"from"`
	To       int     `json:"to"`
	Animated bool    `json:"animated"`
	Force    bool    `json:"force"`
	Delta    float64 `json:"delta"`
	Velocity float64 `json:"velocity"`
	MS       int     `json:"ms"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Steps    []Step  `json:"steps"`
}

// Ops lists the recognised step operations.
var Ops = []string{
	"appear", "disappear", "reload", "scroll", "drag", "release", "tick",
	"insert", "delete", "move", "reload_pages", "reload_all", "batch",
	"resize", "memory_warning", "append_unannounced",
}

// StepError is a step that broke a pager invariant.
type StepError struct {
	Step int
	Op   string
	Err  *pager.InvariantError
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Parse reads a script. Unknown fields are errors.
func Parse(data []byte) (Script, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return Script{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	var s Script
	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("invalid script: %w", err)
	}
	if err := s.validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

func (s *Script) validate() error {
	var errs []error
	if s.Pages < 0 {
		errs = append(errs, fmt.Errorf("pages must not be negative, got %d", s.Pages))
	}
	if s.Axis == "" {
		s.Axis = "horizontal"
	}
	if _, ok := pager.ParseAxis(s.Axis); !ok {
		errs = append(errs, fmt.Errorf("unknown axis %q", s.Axis))
	}
	if s.Width == 0 {
		s.Width = 80
	}
	if s.Height == 0 {
		s.Height = 24
	}
	if s.Width < 0 || s.Height < 0 {
		errs = append(errs, fmt.Errorf("size must not be negative, got %dx%d", s.Width, s.Height))
	}
	var walk func(prefix string, steps []Step)
	walk = func(prefix string, steps []Step) {
		for i, st := range steps {
			if !slices.Contains(Ops, st.Op) {
				errs = append(errs, fmt.Errorf("step %s%d: unknown op %q", prefix, i+1, st.Op))
			}
			if st.Op == "batch" {
				walk(fmt.Sprintf("%s%d.", prefix, i+1), st.Steps)
			}
		}
	}
	walk("", s.Steps)
	return errors.Join(errs...)
}

// Run plays s against a fresh container over a terminal surface and returns
// the trace. A broken invariant stops the run; the trace up to that point is
// returned with a *StepError.
func Run(s Script, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := newRunner(s, log)
	for i, st := range s.Steps {
		if err := r.do(i, st); err != nil {
			return r.trace.lines, err
		}
		r.state()
	}
	return r.trace.lines, nil
}

// ── Runner ──────────────────────────────────────────────────────────────────

type trace struct{ lines []string }

func (t *trace) add(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

type item struct {
	name string
	rev  int
}

func (it item) label() string {
	if it.rev == 0 {
		return it.name
	}
	return fmt.Sprintf("%s@%d", it.name, it.rev)
}

type runner struct {
	c       *pager.Container
	surface *surface.Surface
	trace   *trace
	items   []item
	added   int
}

func newRunner(s Script, log *zap.Logger) *runner {
	axis, _ := pager.ParseAxis(s.Axis)
	r := &runner{
		surface: surface.New(axis, s.Width, s.Height,
			surface.WithAnimation(time.Duration(s.AnimationMS)*time.Millisecond),
			surface.WithDeceleration(time.Duration(s.DecelerationMS)*time.Millisecond),
		),
		trace: &trace{},
	}
	if s.Bounces != nil {
		r.surface.SetBounces(*s.Bounces)
	}
	if s.ScrollEnabled != nil {
		r.surface.SetScrollEnabled(*s.ScrollEnabled)
	}
	for i := 0; i < s.Pages; i++ {
		r.items = append(r.items, item{name: fmt.Sprintf("p%d", i)})
	}
	r.c = pager.New(r.surface, r,
		pager.WithAxis(axis),
		pager.WithLogger(log),
		pager.WithDelegate(&delegate{trace: r.trace}),
		pager.WithPrefetcher(prefetcher{trace: r.trace}),
		pager.WithPrefetchPageNumber(s.Prefetch),
	)
	r.surface.SetListener(r.c)
	r.c.Register("page", func() pager.Content { return &content{trace: r.trace} })
	return r
}

func (r *runner) PageCount() int { return len(r.items) }

func (r *runner) PageAt(index int) *pager.Page {
	p := r.c.DequeueReusable("page")
	if c, ok := p.Content().(*content); ok {
		c.name = r.items[index].label()
	}
	return p
}

func (r *runner) do(i int, st Step) (err error) {
	defer func() {
		if v := recover(); v != nil {
			ie, ok := v.(*pager.InvariantError)
			if !ok {
				panic(v)
			}
			err = &StepError{Step: i + 1, Op: st.Op, Err: ie}
		}
	}()
	r.trace.add("> %s", describe(st))
	r.apply(st)
	return nil
}

func (r *runner) apply(st Step) {
	done := func(what string) func(bool) {
		return func(ok bool) { r.trace.add("%s done=%v", what, ok) }
	}
	switch st.Op {
	case "appear":
		r.c.SetAppearance(pager.WillAppear, st.Animated)
		r.c.SetAppearance(pager.DidAppear, st.Animated)
	case "disappear":
		r.c.SetAppearance(pager.WillDisappear, st.Animated)
		r.c.SetAppearance(pager.DidDisappear, st.Animated)
	case "reload":
		r.c.ReloadData(st.Index, st.Force, done("reload"))
	case "reload_all":
		r.c.ReloadAll()
	case "scroll":
		r.c.ScrollTo(st.Index, st.Animated, done("scroll"))
	case "drag":
		if !r.surface.IsDragging() && !r.surface.BeginDrag() {
			r.trace.add("drag refused")
			return
		}
		r.surface.DragBy(st.Delta)
	case "release":
		r.surface.EndDrag(st.Velocity)
	case "tick":
		r.surface.Advance(time.Duration(st.MS) * time.Millisecond)
	case "insert":
		for _, idx := range sorted(st.Indices) {
			if idx >= 0 && idx <= len(r.items) {
				r.added++
				r.items = slices.Insert(r.items, idx, item{name: fmt.Sprintf("n%d", r.added)})
			}
		}
		r.c.Insert(st.Indices...)
	case "delete":
		idxs := sorted(st.Indices)
		for i := len(idxs) - 1; i >= 0; i-- {
			if idx := idxs[i]; idx >= 0 && idx < len(r.items) {
				r.items = slices.Delete(r.items, idx, idx+1)
			}
		}
		r.c.Delete(st.Indices...)
	case "move":
		if st.From >= 0 && st.From < len(r.items) && st.To >= 0 && st.To < len(r.items) {
			it := r.items[st.From]
			r.items = slices.Insert(slices.Delete(r.items, st.From, st.From+1), st.To, it)
		}
		r.c.Move(st.From, st.To)
	case "reload_pages":
		for _, idx := range sorted(st.Indices) {
			if idx >= 0 && idx < len(r.items) {
				r.items[idx].rev++
			}
		}
		r.c.Reload(st.Indices...)
	case "batch":
		r.c.PerformBatch(func() {
			for _, sub := range st.Steps {
				r.apply(sub)
			}
		}, done("batch"))
	case "resize":
		r.surface.Resize(st.Width, st.Height)
		r.c.Relayout()
	case "memory_warning":
		r.c.ReceiveMemoryWarning()
	case "append_unannounced":
		r.added++
		r.items = append(r.items, item{name: fmt.Sprintf("n%d", r.added)})
	}
}

// state records where the container rests after a step.
func (r *runner) state() {
	snap, ok := r.c.Current()
	if !ok {
		r.trace.add("= empty count=%d", r.c.Count())
		return
	}
	minor := "-"
	if snap.Minor != nil {
		minor = snap.Minor.Content().(*content).name
	}
	r.trace.add("= position=%.2f major=%s minor=%s count=%d pooled=%d",
		snap.Position, snap.Major.Content().(*content).name, minor, r.c.Count(), r.c.PooledCount("page"))
}

func sorted(indices []int) []int {
	out := slices.Clone(indices)
	slices.Sort(out)
	return slices.Compact(out)
}

func describe(st Step) string {
	var b strings.Builder
	b.WriteString(st.Op)
	switch st.Op {
	case "reload":
		fmt.Fprintf(&b, " %d force=%v", st.Index, st.Force)
	case "scroll":
		fmt.Fprintf(&b, " %d animated=%v", st.Index, st.Animated)
	case "drag":
		fmt.Fprintf(&b, " %g", st.Delta)
	case "release":
		fmt.Fprintf(&b, " velocity=%g", st.Velocity)
	case "tick":
		fmt.Fprintf(&b, " %dms", st.MS)
	case "insert", "delete", "reload_pages":
		fmt.Fprintf(&b, " %v", st.Indices)
	case "move":
		fmt.Fprintf(&b, " %d->%d", st.From, st.To)
	case "resize":
		fmt.Fprintf(&b, " %dx%d", st.Width, st.Height)
	case "batch":
		fmt.Fprintf(&b, " (%d steps)", len(st.Steps))
	}
	return b.String()
}

// ── Collaborators ───────────────────────────────────────────────────────────

type content struct {
	name  string
	trace *trace
}

func (c *content) BeginAppearance(appearing, animated bool) {
	verb := "disappearing"
	if appearing {
		verb = "appearing"
	}
	c.trace.add("%s begin %s animated=%v", c.name, verb, animated)
}

func (c *content) EndAppearance() { c.trace.add("%s end", c.name) }

func (c *content) PrepareForReuse() { c.name = "" }

type delegate struct {
	pager.NopDelegate
	trace *trace
}

func (d *delegate) WillBeginShowing(i int, _ *pager.Page) { d.trace.add("will-show %d", i) }
func (d *delegate) DidFinishShowing(i int, _ *pager.Page) { d.trace.add("did-show %d", i) }
func (d *delegate) DidStopShowing(i int, _ *pager.Page)   { d.trace.add("did-stop %d", i) }
func (d *delegate) WillBeginGesture()                     { d.trace.add("gesture-begin") }
func (d *delegate) DidEndGesture()                        { d.trace.add("gesture-end") }

type prefetcher struct{ trace *trace }

func (p prefetcher) PrefetchWindowChanged(start, cancel []int) {
	p.trace.add("prefetch start=%v cancel=%v", start, cancel)
}
