package deck

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Akashdeep-Patra/zed-page-view/internal/pager"
)

// job is one in-flight prefetch.
type job struct {
	cancel context.CancelFunc
}

// Loader is the pager's prefetcher: for each index entering the prefetch
// window it reads and renders the page on its own goroutine so the result
// is cached by the time the page is materialized. Indices leaving the
// window have their work cancelled.
type Loader struct {
	deck *Deck
	log  *zap.Logger
	ctx  context.Context

	mu       sync.Mutex
	inflight map[int]*job
	wg       sync.WaitGroup

	loaded    atomic.Int64
	cancelled atomic.Int64
}

var _ pager.Prefetcher = (*Loader)(nil)

// NewLoader creates a loader for d. Cancelling ctx stops all loads.
func NewLoader(ctx context.Context, d *Deck, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		deck:     d,
		log:      log.Named("prefetch"),
		ctx:      ctx,
		inflight: make(map[int]*job),
	}
}

func (l *Loader) PrefetchWindowChanged(start, cancel []int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, i := range cancel {
		if j, ok := l.inflight[i]; ok {
			j.cancel()
			delete(l.inflight, i)
		}
	}

	width, _ := l.deck.PageSize()
	for _, i := range start {
		e, ok := l.deck.Entry(i)
		if !ok {
			continue
		}
		if j, ok := l.inflight[i]; ok {
			j.cancel()
		}
		ctx, stop := context.WithCancel(l.ctx)
		j := &job{cancel: stop}
		l.inflight[i] = j

		l.wg.Add(1)
		go l.load(ctx, i, j, e, width)
	}
}

func (l *Loader) load(ctx context.Context, index int, j *job, e Entry, width int) {
	defer l.wg.Done()
	defer func() {
		l.mu.Lock()
		if l.inflight[index] == j {
			delete(l.inflight, index)
		}
		l.mu.Unlock()
		j.cancel()
	}()

	if ctx.Err() != nil {
		l.cancelled.Add(1)
		return
	}
	doc := l.deck.Document(e)
	if ctx.Err() != nil || doc.Err != nil {
		l.cancelled.Add(1)
		return
	}
	// Pages render one column narrower than they are, leaving room for
	// the scrollbar.
	if _, err := l.deck.Renderer(e.Kind).Render(doc, max(width-1, 0)); err != nil {
		l.log.Debug("prefetch render", zap.String("page", e.Name), zap.Error(err))
	}
	if ctx.Err() != nil {
		l.cancelled.Add(1)
		return
	}
	l.loaded.Add(1)
	l.log.Debug("prefetched", zap.Int("index", index), zap.String("page", e.Name))
}

// Pending reports how many loads are in flight.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}

// Stats reports how many loads completed and how many were cancelled.
func (l *Loader) Stats() (loaded, cancelled int64) {
	return l.loaded.Load(), l.cancelled.Load()
}

// Wait blocks until every started load has finished.
func (l *Loader) Wait() { l.wg.Wait() }

// Close cancels all loads and waits for them.
func (l *Loader) Close() {
	l.mu.Lock()
	for i, j := range l.inflight {
		j.cancel()
		delete(l.inflight, i)
	}
	l.mu.Unlock()
	l.wg.Wait()
}
