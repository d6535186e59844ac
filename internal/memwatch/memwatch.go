// Package memwatch polls system memory and reports when usage crosses a
// threshold, so the app can drop pooled pages and cached renderings.
package memwatch

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sampler returns the percentage of system memory in use.
type Sampler func() (float64, error)

// SystemMemory samples virtual memory usage via gopsutil.
func SystemMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("memwatch: %w", err)
	}
	return vm.UsedPercent, nil
}

// SampleMsg carries one memory sample to the update loop.
type SampleMsg struct {
	UsedPercent float64
	Err         error
}

// Monitor decides when a sample is a warning. Warnings are edge-triggered:
// one fires when usage rises to the threshold, and the next only after
// usage has dropped below it again.
type Monitor struct {
	threshold float64
	interval  time.Duration
	sample    Sampler
	above     bool
}

// New creates a monitor. A threshold of zero or less disables it.
func New(threshold float64, interval time.Duration, sample Sampler) *Monitor {
	if sample == nil {
		sample = SystemMemory
	}
	return &Monitor{threshold: threshold, interval: interval, sample: sample}
}

// Enabled reports whether the monitor polls at all.
func (m *Monitor) Enabled() bool { return m.threshold > 0 && m.interval > 0 }

// Poll schedules the next sample. The app calls it again after each
// SampleMsg to keep polling.
func (m *Monitor) Poll() tea.Cmd {
	if !m.Enabled() {
		return nil
	}
	sample := m.sample
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		pct, err := sample()
		return SampleMsg{UsedPercent: pct, Err: err}
	})
}

// Observe records a sample and reports whether it is a new warning.
func (m *Monitor) Observe(usedPercent float64) bool {
	if !m.Enabled() {
		return false
	}
	if usedPercent < m.threshold {
		m.above = false
		return false
	}
	if m.above {
		return false
	}
	m.above = true
	return true
}
