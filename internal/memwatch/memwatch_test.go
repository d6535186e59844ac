package memwatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveIsEdgeTriggered(t *testing.T) {
	m := New(80, time.Second, nil)
	var got []bool
	for _, pct := range []float64{50, 85, 90, 79, 80, 81} {
		got = append(got, m.Observe(pct))
	}
	assert.Equal(t, []bool{false, true, false, false, true, false}, got)
}

func TestDisabled(t *testing.T) {
	m := New(0, time.Second, nil)
	assert.False(t, m.Enabled())
	assert.Nil(t, m.Poll())
	assert.False(t, m.Observe(100))
}

func TestPollSamples(t *testing.T) {
	m := New(50, time.Millisecond, func() (float64, error) { return 42, nil })
	cmd := m.Poll()
	require.NotNil(t, cmd)
	msg, ok := cmd().(SampleMsg)
	require.True(t, ok)
	assert.Equal(t, 42.0, msg.UsedPercent)
	assert.NoError(t, msg.Err)

	boom := errors.New("boom")
	m = New(50, time.Millisecond, func() (float64, error) { return 0, boom })
	msg = m.Poll()().(SampleMsg)
	assert.ErrorIs(t, msg.Err, boom)
}

func TestSystemMemory(t *testing.T) {
	pct, err := SystemMemory()
	if err != nil {
		t.Skipf("memory stats unavailable: %v", err)
	}
	assert.Greater(t, pct, 0.0)
	assert.LessOrEqual(t, pct, 100.0)
}
