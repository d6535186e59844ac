package deck

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/views"
)

// Deck is the pager data source for a directory. Entries are read from the
// prefetch loader's goroutines, so they are guarded; everything else runs
// on the update loop with the container.
type Deck struct {
	dir  string
	exts []string
	log  *zap.Logger

	cache     *Cache
	overrides map[views.Kind]views.Renderer
	styles    ui.Styles
	mdStyle   string
	wrap      bool

	mu      sync.RWMutex
	entries []Entry

	container *pager.Container
	width     int
	height    int
}

var _ pager.DataSource = (*Deck)(nil)

// Option configures a Deck.
type Option func(*Deck)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Deck) {
		if l != nil {
			d.log = l
		}
	}
}

// WithCache shares a cache with the deck.
func WithCache(c *Cache) Option { return func(d *Deck) { d.cache = c } }

// WithRenderer replaces the renderer for a kind of page.
func WithRenderer(kind views.Kind, r views.Renderer) Option {
	return func(d *Deck) { d.overrides[kind] = r }
}

// WithWordWrap wraps long lines of text pages.
func WithWordWrap(b bool) Option { return func(d *Deck) { d.wrap = b } }

// New scans dir and returns its deck.
func New(dir string, exts []string, opts ...Option) (*Deck, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	d := &Deck{
		dir:       dir,
		exts:      exts,
		log:       zap.NewNop(),
		overrides: make(map[views.Kind]views.Renderer),
		styles:    ui.DefaultStyles(),
		mdStyle:   ui.DarkTheme().Glamour,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache == nil {
		d.cache = NewCache(DefaultCacheTTL)
	}
	d.log = d.log.Named("deck")

	entries, err := Scan(dir, exts)
	if err != nil {
		return nil, err
	}
	d.entries = entries
	return d, nil
}

// Dir returns the deck directory.
func (d *Deck) Dir() string { return d.dir }

// Extensions returns the file extensions the deck picks up.
func (d *Deck) Extensions() []string { return d.exts }

// Cache returns the deck's body and render cache.
func (d *Deck) Cache() *Cache { return d.cache }

// Entries returns a copy of the current entries.
func (d *Deck) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Entry returns the entry at index.
func (d *Deck) Entry(index int) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if index < 0 || index >= len(d.entries) {
		return Entry{}, false
	}
	return d.entries[index], true
}

// Find returns the index of the entry named name.
func (d *Deck) Find(name string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i, e := range d.entries {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Attach makes the deck the data source of c and registers one reuse
// identifier per page kind. Markdown pages are built from the glamour style
// named by the theme.
func (d *Deck) Attach(c *pager.Container, styles ui.Styles) {
	d.container = c
	d.styles = styles
	d.mdStyle = styles.Theme.Glamour
	c.SetDataSource(d)
	c.RegisterResource(string(views.KindMarkdown), func(style string) pager.Content {
		return views.NewDocumentPage(d.styles, d.markdownRenderer(style))
	}, d.mdStyle)
	c.Register(string(views.KindText), func() pager.Content {
		return views.NewDocumentPage(d.styles, d.Renderer(views.KindText))
	})
}

// Renderer returns the cached renderer pages of kind use.
func (d *Deck) Renderer(kind views.Kind) views.Renderer {
	if kind == views.KindMarkdown {
		return d.markdownRenderer(d.mdStyle)
	}
	if r, ok := d.overrides[kind]; ok {
		return d.cache.Renderer(string(kind), r)
	}
	return d.cache.Renderer(string(kind), views.TextRenderer{Styles: d.styles, LineNumbers: true, Wrap: d.wrap})
}

func (d *Deck) markdownRenderer(style string) views.Renderer {
	if r, ok := d.overrides[views.KindMarkdown]; ok {
		return d.cache.Renderer(string(views.KindMarkdown), r)
	}
	return d.cache.Renderer("markdown:"+style, views.MarkdownRenderer{Style: style})
}

// SetPageSize sets the size pages are laid out at, and resizes the pages
// on screen.
func (d *Deck) SetPageSize(w, h int) {
	d.width, d.height = w, h
	if d.container == nil {
		return
	}
	if snap, ok := d.container.Current(); ok {
		for _, p := range []*pager.Page{snap.Major, snap.Minor} {
			if dp, ok := pageContent(p); ok {
				dp.SetSize(w, h)
			}
		}
	}
}

// PageSize returns the size pages are laid out at.
func (d *Deck) PageSize() (w, h int) { return d.width, d.height }

func pageContent(p *pager.Page) (*views.DocumentPage, bool) {
	if p == nil {
		return nil, false
	}
	dp, ok := p.Content().(*views.DocumentPage)
	return dp, ok
}

// ── pager.DataSource ────────────────────────────────────────────────────────

func (d *Deck) PageCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *Deck) PageAt(index int) *pager.Page {
	e, _ := d.Entry(index)
	page := d.container.DequeueReusable(string(e.Kind))
	if dp, ok := pageContent(page); ok {
		dp.SetSize(d.width, d.height)
		dp.Bind(d.Document(e))
	}
	return page
}

// Document loads e as a page document. A read error is carried in the
// document rather than returned, so the page can show it.
func (d *Deck) Document(e Entry) views.Document {
	doc := views.Document{Name: e.Name, Path: e.Path, Kind: e.Kind, ModTime: e.ModTime}
	body, err := d.cache.Body(e)
	if err != nil {
		d.log.Warn("read page", zap.String("path", e.Path), zap.Error(err))
		doc.Err = err
		return doc
	}
	doc.Body = body
	return doc
}

// ── Rescan ──────────────────────────────────────────────────────────────────

// Rescan rereads the directory and applies the difference to the attached
// container as one batch: deletions, then insertions, then reloads of
// edited files.
func (d *Deck) Rescan() (Diff, error) {
	next, err := Scan(d.dir, d.exts)
	if err != nil {
		return Diff{}, err
	}

	d.mu.Lock()
	old := d.entries
	diff := Compare(old, next)
	if diff.Empty() {
		d.mu.Unlock()
		return diff, nil
	}
	d.entries = next
	d.mu.Unlock()

	d.log.Info("deck changed",
		zap.Ints("deleted", diff.Deleted),
		zap.Ints("inserted", diff.Inserted),
		zap.Ints("reloaded", diff.Reloaded),
	)

	c := d.container
	if c == nil {
		return diff, nil
	}
	if c.Count() != len(old) {
		// The container never loaded the old entries; start over.
		c.ReloadData(0, true, nil)
		return diff, nil
	}
	c.PerformBatch(func() {
		if len(diff.Deleted) > 0 {
			c.Delete(diff.Deleted...)
		}
		if len(diff.Inserted) > 0 {
			c.Insert(diff.Inserted...)
		}
		if len(diff.Reloaded) > 0 {
			c.Reload(diff.Reloaded...)
		}
	}, nil)
	return diff, nil
}
