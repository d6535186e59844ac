package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReusePoolFIFO(t *testing.T) {
	rp := newReusePool(zaptest.NewLogger(t))
	built := 0
	rp.register("card", func() Content {
		built++
		return &recordingContent{trace: &trace{}}
	})

	a := rp.dequeue("card")
	b := rp.dequeue("card")
	require.Equal(t, 2, built)
	assert.Equal(t, "card", a.ReuseIdentifier())
	assert.NotEqual(t, a.ID(), b.ID())

	require.True(t, rp.release(a))
	require.True(t, rp.release(b))
	assert.Equal(t, 2, rp.size("card"))

	assert.Same(t, a, rp.dequeue("card"))
	assert.Same(t, b, rp.dequeue("card"))
	assert.Equal(t, 2, built, "pooled pages must be reused before building")
	assert.Equal(t, 1, a.Content().(*recordingContent).resets)
}

func TestReusePoolLastRegistrationWins(t *testing.T) {
	rp := newReusePool(zaptest.NewLogger(t))
	rp.register("x", func() Content { return &recordingContent{name: "first", trace: &trace{}} })
	rp.register("x", func() Content { return &recordingContent{name: "second", trace: &trace{}} })
	assert.Equal(t, "second", nameOf(rp.dequeue("x")))
}

func TestReusePoolUnregistered(t *testing.T) {
	rp := newReusePool(zaptest.NewLogger(t))
	err := requireInvariant(t, func() { rp.dequeue("missing") })
	assert.Equal(t, "dequeue", err.Op)
	assert.Contains(t, err.Error(), `"missing"`)

	assert.False(t, rp.release(NewPage(&recordingContent{trace: &trace{}})),
		"untagged pages are not pooled")
}

func TestReusePoolNilFactoryResult(t *testing.T) {
	rp := newReusePool(zaptest.NewLogger(t))
	rp.register("nil", func() Content { return nil })
	requireInvariant(t, func() { rp.dequeue("nil") })
}

func TestReusePoolClear(t *testing.T) {
	rp := newReusePool(zaptest.NewLogger(t))
	rp.register("a", func() Content { return &recordingContent{trace: &trace{}} })
	rp.release(rp.dequeue("a"))
	rp.release(rp.dequeue("a"))
	require.Equal(t, 1, rp.size("a"), "second dequeue reused the first page")

	rp.clear()
	assert.Zero(t, rp.size("a"))
}

func TestRegisterResource(t *testing.T) {
	h := newHarness(t, "a")
	h.c.RegisterResource("styled", func(resource string) Content {
		return &recordingContent{name: resource, trace: h.trace}
	}, "dark.json")
	p := h.c.DequeueReusable("styled")
	assert.Equal(t, "dark.json", nameOf(p))
	assert.Equal(t, "styled", p.ReuseIdentifier())
}
