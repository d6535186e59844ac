package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Akashdeep-Patra/zed-page-view/internal/common"
	"github.com/Akashdeep-Patra/zed-page-view/internal/config"
	"github.com/Akashdeep-Patra/zed-page-view/internal/deck"
	"github.com/Akashdeep-Patra/zed-page-view/internal/memwatch"
	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
	"github.com/Akashdeep-Patra/zed-page-view/internal/surface"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/components"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/views"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// frameInterval paces animation and deceleration ticks.
const frameInterval = 16 * time.Millisecond

// wheelLines is how far one wheel notch scrolls a page.
const wheelLines = 3

// Options configures a Model.
type Options struct {
	Config  *config.Config
	Deck    *deck.Deck
	Log     *zap.Logger
	Monitor *memwatch.Monitor
	// Start names the first page shown: a 1-based number or a file name.
	Start string
}

// Model is the top-level Bubbletea model. It hosts the pager: the surface
// takes mouse drags and frame ticks, the container decides which pages are
// attached, and the deck supplies them.
type Model struct {
	cfg     *config.Config
	log     *zap.Logger
	styles  ui.Styles
	keys    KeyMap
	deck    *deck.Deck
	pager   *pager.Container
	surface *surface.Surface
	loader  *deck.Loader
	monitor *memwatch.Monitor
	tracker *tracker
	empty   common.View
	stop    context.CancelFunc

	width    int
	height   int
	start    int
	started  bool
	animate  bool
	ticking  bool
	showHelp bool

	statusMsg string
	statusErr bool
	statusExp time.Time
	dialog    *components.Dialog

	drag *dragState
	now  func() time.Time
}

// dragState follows one mouse drag on the content area.
type dragState struct {
	x, y     int
	at       time.Time
	velocity float64 // pages per second, positive forward
}

// frameMsg drives the surface while it animates or decelerates.
type frameMsg struct{}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// New wires a pager over opts.Deck.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	theme, _ := ui.ThemeByName(cfg.Theme)
	styles := ui.NewStyles(theme)
	axis, _ := pager.ParseAxis(cfg.Axis)

	s := surface.New(axis, 0, 0,
		surface.WithAnimation(cfg.Animation()),
		surface.WithDeceleration(cfg.Deceleration()),
		surface.WithBounces(cfg.Bounces),
	)
	ctx, stop := context.WithCancel(context.Background())
	tr := &tracker{log: log.Named("delegate")}
	loader := deck.NewLoader(ctx, opts.Deck, log)
	c := pager.New(s, nil,
		pager.WithAxis(axis),
		pager.WithLogger(log),
		pager.WithDelegate(tr),
		pager.WithPrefetcher(loader),
		pager.WithPrefetchPageNumber(cfg.PrefetchPages),
	)
	s.SetListener(c)
	opts.Deck.Attach(c, styles)

	monitor := opts.Monitor
	if monitor == nil {
		monitor = memwatch.New(cfg.MemoryThreshold, cfg.MemoryPoll(), nil)
	}

	m := Model{
		cfg:     cfg,
		log:     log,
		styles:  styles,
		keys:    NewKeyMap(cfg.Keys),
		deck:    opts.Deck,
		pager:   c,
		surface: s,
		loader:  loader,
		monitor: monitor,
		tracker: tr,
		empty:   views.NewEmptyView(opts.Deck.Dir(), opts.Deck.Extensions(), styles),
		stop:    stop,
		animate: cfg.Animate,
		now:     time.Now,
	}
	if opts.Start != "" {
		idx, err := m.resolvePage(opts.Start)
		if err != nil {
			m.setStatus(err.Error(), true)
		}
		m.start = idx
	}
	return m
}

// Close stops background page loads.
func (m Model) Close() {
	m.stop()
	m.loader.Close()
	loaded, cancelled := m.loader.Stats()
	hits, misses := m.deck.Cache().Stats()
	m.log.Debug("pager closed",
		zap.Int64("prefetched", loaded),
		zap.Int64("prefetch_cancelled", cancelled),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)
}

// Container returns the hosted pager.
func (m Model) Container() *pager.Container { return m.pager }

// Surface returns the scroll surface.
func (m Model) Surface() *surface.Surface { return m.surface }

// Init starts memory polling. The pager starts on the first window size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.empty.Init(), m.monitor.Poll())
}

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	if !m.ticking && m.surface.Moving() {
		m.ticking = true
		cmd = tea.Batch(cmd, nextFrame())
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	// Dialog has exclusive input when visible.
	if m.dialog != nil && m.dialog.Visible() {
		d, cmd := m.dialog.Update(msg)
		m.dialog = &d
		if _, ok := msg.(tea.KeyMsg); ok || !isAppMsg(msg) {
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		if m.surface.Advance(frameInterval) {
			return m, nextFrame()
		}
		m.ticking = false
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case common.GotoMsg:
		m.goTo(msg.Index, msg.Animated)
		return m, nil

	case common.ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case common.RescanMsg:
		return m, m.rescan()

	case memwatch.SampleMsg:
		cmd := m.monitor.Poll()
		if msg.Err != nil {
			m.log.Warn("memory sample", zap.Error(msg.Err))
			return m, cmd
		}
		if m.monitor.Observe(msg.UsedPercent) {
			pct := msg.UsedPercent
			cmd = tea.Batch(cmd, func() tea.Msg { return common.MemoryWarningMsg{UsedPercent: pct} })
		}
		return m, cmd

	case common.MemoryWarningMsg:
		pooled := m.pooled()
		m.pager.ReceiveMemoryWarning()
		m.deck.Cache().Flush()
		m.log.Info("memory warning", zap.Float64("used_percent", msg.UsedPercent), zap.Int("released_pages", pooled))
		m.setStatus(fmt.Sprintf("memory at %.0f%%: released %d cached pages", msg.UsedPercent, pooled), false)
		return m, nil

	case common.ErrMsg:
		m.setStatus(msg.Err.Error(), true)
		return m, nil

	case common.InfoMsg:
		m.setStatus(msg.Text, false)
		return m, nil

	case components.DialogResult:
		m.dialog = nil
		if msg.Confirmed && msg.Tag == "goto" {
			if idx, err := m.resolvePage(msg.Value); err == nil {
				m.goTo(idx, m.animate)
			}
		}
		return m, nil
	}

	if m.deck.PageCount() == 0 {
		v, cmd := m.empty.Update(msg)
		m.empty = v
		return m, cmd
	}
	return m, nil
}

// isAppMsg reports messages that must reach the app even while a dialog
// holds the keyboard.
func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.WindowSizeMsg, frameMsg, common.RescanMsg, memwatch.SampleMsg,
		common.MemoryWarningMsg, common.ErrMsg, common.InfoMsg, components.DialogResult:
		return true
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return *m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Back):
		m.showHelp = false
	case m.showHelp:
		// The overlay swallows everything else.

	case key.Matches(msg, m.keys.Next):
		m.goTo(m.target()+1, m.animate)
	case key.Matches(msg, m.keys.Prev):
		m.goTo(m.target()-1, m.animate)
	case key.Matches(msg, m.keys.First):
		m.goTo(0, m.animate)
	case key.Matches(msg, m.keys.Last):
		m.goTo(m.pager.Count()-1, m.animate)
	case key.Matches(msg, m.keys.Goto):
		if m.pager.Count() == 0 {
			break
		}
		d := components.NewInputDialog(m.styles, "Go to page", fmt.Sprintf("1–%d or a file name", m.pager.Count()), "goto")
		d.Validate = func(s string) error {
			_, err := m.resolvePage(s)
			return err
		}
		m.dialog = &d

	case key.Matches(msg, m.keys.Down):
		m.scrollPage(1)
	case key.Matches(msg, m.keys.Up):
		m.scrollPage(-1)
	case key.Matches(msg, m.keys.HalfDown):
		if p, ok := m.currentPage(); ok {
			p.ScrollHalf(true)
		}
	case key.Matches(msg, m.keys.HalfUp):
		if p, ok := m.currentPage(); ok {
			p.ScrollHalf(false)
		}

	case key.Matches(msg, m.keys.Rescan):
		return *m, common.CmdRescan
	case key.Matches(msg, m.keys.Reload):
		if snap, ok := m.pager.Current(); ok {
			m.deck.Cache().Flush()
			m.pager.ReloadData(snap.Index, true, nil)
			m.setStatus("reloaded "+m.title(snap.Index), false)
		}
	case key.Matches(msg, m.keys.ToggleAnim):
		m.animate = !m.animate
		state := "off"
		if m.animate {
			state = "on"
		}
		m.setStatus("animation "+state, false)
	}
	return *m, nil
}

// ── Pager driving ───────────────────────────────────────────────────────────

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw, ch := m.width, m.contentHeight()
	m.surface.Resize(cw, ch)
	m.deck.SetPageSize(cw, ch)
	m.empty.SetSize(cw, ch)
	if m.started {
		m.pager.Relayout()
		return
	}
	m.started = true
	m.pager.SetAppearance(pager.WillAppear, false)
	m.pager.SetAppearance(pager.DidAppear, false)
	m.pager.ReloadData(m.start, true, func(ok bool) {
		if !ok && m.start != 0 {
			m.pager.ReloadData(0, true, nil)
		}
	})
}

// target is the page a relative move starts from: the nearest page to the
// viewport, so repeated presses during an animation keep advancing.
func (m Model) target() int {
	return int(m.pager.Position() + 0.5)
}

func (m *Model) goTo(index int, animated bool) {
	if index < 0 || index >= m.pager.Count() {
		return
	}
	m.pager.ScrollTo(index, animated, func(finished bool) {
		if !finished {
			m.log.Debug("scroll did not finish", zap.Int("index", index))
		}
	})
}

func (m Model) currentPage() (*views.DocumentPage, bool) {
	snap, ok := m.pager.Current()
	if !ok || snap.Major == nil {
		return nil, false
	}
	dp, ok := snap.Major.Content().(*views.DocumentPage)
	return dp, ok
}

func (m Model) scrollPage(n int) {
	if p, ok := m.currentPage(); ok {
		p.ScrollLines(n)
	}
}

func (m *Model) rescan() tea.Cmd {
	diff, err := m.deck.Rescan()
	if err != nil {
		m.log.Error("rescan", zap.String("dir", m.deck.Dir()), zap.Error(err))
		return common.CmdErr(fmt.Errorf("rescan: %w", err))
	}
	if diff.Empty() {
		return nil
	}
	m.log.Info("rescan", zap.Stringer("diff", diff))
	return common.CmdInfo(diff.String())
}

// resolvePage turns user input into a page index: a 1-based number or a
// file name.
func (m Model) resolvePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("enter a page number or name")
	}
	n := m.deck.PageCount()
	if v, err := strconv.Atoi(s); err == nil {
		if v < 1 || v > n {
			return 0, fmt.Errorf("page %d is out of range 1–%d", v, n)
		}
		return v - 1, nil
	}
	if i, ok := m.deck.Find(s); ok {
		return i, nil
	}
	return 0, fmt.Errorf("no page named %q", s)
}

func (m Model) pooled() int {
	return m.pager.PooledCount(string(views.KindMarkdown)) + m.pager.PooledCount(string(views.KindText))
}

func (m Model) title(index int) string {
	e, _ := m.deck.Entry(index)
	return e.Name
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
	d := 3 * time.Second
	if isErr {
		d = 5 * time.Second
	}
	m.statusExp = m.now().Add(d)
}

// ── Mouse ───────────────────────────────────────────────────────────────────

// handleMouse maps the mouse onto the pager: clicks and wheel on the page
// bar change pages, the wheel scrolls the shown page, and a left-button drag
// on the content swipes the surface.
func (m *Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.drag != nil {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.dragTo(msg.X, msg.Y)
			return *m, nil
		case tea.MouseActionRelease:
			m.dragTo(msg.X, msg.Y)
			m.surface.EndDrag(m.drag.velocity)
			m.drag = nil
			return *m, nil
		}
	}

	onBar := msg.Y < components.PageBarRows
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		up := msg.Button == tea.MouseButtonWheelUp
		if onBar {
			if up {
				m.goTo(m.target()-1, m.animate)
			} else {
				m.goTo(m.target()+1, m.animate)
			}
			return *m, nil
		}
		if up {
			m.scrollPage(-wheelLines)
		} else {
			m.scrollPage(wheelLines)
		}

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			break
		}
		if onBar {
			_, zones := components.RenderPageBar(m.styles, m.pageTabs(), m.progress(), m.width)
			if i, ok := components.HitZone(zones, msg.X); ok {
				m.goTo(i, m.animate)
			}
			return *m, nil
		}
		if msg.Y < components.PageBarRows+m.contentHeight() && m.surface.BeginDrag() {
			m.drag = &dragState{x: msg.X, y: msg.Y, at: m.now()}
		}
	}
	return *m, nil
}

func (m *Model) dragTo(x, y int) {
	d := m.drag
	delta := d.x - x
	extent := m.width
	if m.surface.Axis() == pager.Vertical {
		delta, extent = d.y-y, m.contentHeight()
	}
	now := m.now()
	if delta != 0 {
		m.surface.DragBy(float64(delta))
		if dt := now.Sub(d.at).Seconds(); dt > 0 && extent > 0 {
			d.velocity = float64(delta) / float64(extent) / dt
		}
	}
	d.x, d.y, d.at = x, y, now
}

// ── View ────────────────────────────────────────────────────────────────────

// View renders the entire UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showHelp {
		sections := m.keys.HelpSections()
		if m.deck.PageCount() == 0 {
			sections["Page"] = m.empty.ShortHelp()
		}
		return components.RenderHelp(m.styles, "Keyboard Shortcuts", sections, m.width, m.height)
	}

	bar, _ := components.RenderPageBar(m.styles, m.pageTabs(), m.progress(), m.width)

	contentH := m.contentHeight()
	var content string
	if m.deck.PageCount() == 0 {
		content = m.empty.View()
	} else {
		ss := strips(m.surface.Axis(), m.surface.Offset(), m.surface.Visible(), m.width, contentH, func(p *pager.Page) string {
			if dp, ok := p.Content().(*views.DocumentPage); ok {
				return dp.View()
			}
			return ""
		})
		content = compose(m.surface.Axis(), ss, m.width, contentH)
	}
	content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(content)

	statusBar := components.RenderStatusBar(m.styles, m.barData(), m.width)
	screen := lipgloss.JoinVertical(lipgloss.Left, bar, content, statusBar)

	if m.dialog != nil && m.dialog.Visible() {
		screen = ui.PlaceCentre(m.width, m.height, m.dialog.View())
	}
	return screen
}

func (m Model) contentHeight() int {
	// height - pageBar - statusBar(1)
	return max(m.height-components.PageBarRows-1, 1)
}

func (m Model) pageTabs() []components.PageTab {
	entries := m.deck.Entries()
	active := m.target()
	tabs := make([]components.PageTab, len(entries))
	for i, e := range entries {
		tabs[i] = components.PageTab{Name: e.Name, Active: i == active}
	}
	return tabs
}

func (m Model) progress() float64 {
	p, _ := m.pager.ProgressInTotal(m.pager.Position())
	return p
}

func (m Model) barData() components.StatusBarData {
	data := components.StatusBarData{
		Count:  m.deck.PageCount(),
		Pooled: m.pooled(),
		Dir:    m.deck.Dir(),
	}
	if snap, ok := m.pager.Current(); ok {
		data.Index = snap.Index
		data.Transitioning = snap.Transitioning
		if e, ok := m.deck.Entry(snap.Index); ok {
			data.Title = e.Name
			data.Kind = string(e.Kind)
		}
	}
	if m.statusMsg != "" && m.now().Before(m.statusExp) {
		data.Message = m.statusMsg
		data.IsError = m.statusErr
	}
	return data
}

// ── Delegate ────────────────────────────────────────────────────────────────

// tracker is the container delegate. It logs page changes and keeps the
// counts the status bar and tests read.
type tracker struct {
	pager.NopDelegate
	log      *zap.Logger
	shown    int
	gestures int
	updates  int
}

func (t *tracker) DidFinishShowing(i int, _ *pager.Page) {
	t.shown++
	t.log.Debug("page shown", zap.Int("index", i))
}

func (t *tracker) DidStopShowing(i int, _ *pager.Page) {
	t.log.Debug("page hidden", zap.Int("index", i))
}

func (t *tracker) WillBeginGesture() { t.gestures++ }

func (t *tracker) DidUpdatePosition() { t.updates++ }
