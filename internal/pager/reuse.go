package pager

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Factory builds fresh content for a reuse identifier.
type Factory func() Content

// ResourceFactory builds content from an external resource descriptor, such
// as a template or style file, bound at registration time.
type ResourceFactory func(resource string) Content

// reusePool holds released pages keyed by reuse identifier. Membership is
// not bounded: at most two pages are visible at once, so churn stays small.
type reusePool struct {
	factories map[string]Factory
	pooled    map[string][]*Page
	log       *zap.Logger
}

func newReusePool(log *zap.Logger) *reusePool {
	return &reusePool{
		factories: make(map[string]Factory),
		pooled:    make(map[string][]*Page),
		log:       log,
	}
}

func (rp *reusePool) register(identifier string, f Factory) {
	rp.factories[identifier] = f
}

// dequeue returns the oldest released page for identifier, or a new one.
func (rp *reusePool) dequeue(identifier string) *Page {
	f, ok := rp.factories[identifier]
	if !ok || f == nil {
		invariantf(rp.log, "dequeue", "reuse identifier %q is not registered", identifier)
	}

	if pages := rp.pooled[identifier]; len(pages) > 0 {
		p := pages[0]
		pages[0] = nil
		rp.pooled[identifier] = pages[1:]
		if r, ok := p.content.(Reusable); ok {
			r.PrepareForReuse()
		}
		p.reuseID = identifier
		rp.log.Debug("reused page", zap.String("reuse_id", identifier), zap.String("page", p.id))
		return p
	}

	content := f()
	if content == nil {
		invariantf(rp.log, "dequeue", "factory for %q returned no content", identifier)
	}
	p := &Page{id: uuid.NewString(), content: content, reuseID: identifier}
	rp.log.Debug("created page", zap.String("reuse_id", identifier), zap.String("page", p.id))
	return p
}

// release pools p when it carries a registered identifier. A false result
// means the caller should simply drop the page.
func (rp *reusePool) release(p *Page) bool {
	if p == nil || p.reuseID == "" {
		return false
	}
	if _, ok := rp.factories[p.reuseID]; !ok {
		return false
	}
	rp.pooled[p.reuseID] = append(rp.pooled[p.reuseID], p)
	return true
}

func (rp *reusePool) clear() {
	n := 0
	for _, pages := range rp.pooled {
		n += len(pages)
	}
	rp.pooled = make(map[string][]*Page)
	rp.log.Debug("reuse pool cleared", zap.Int("dropped", n))
}

// size reports how many released pages are waiting for identifier.
func (rp *reusePool) size(identifier string) int {
	return len(rp.pooled[identifier])
}
