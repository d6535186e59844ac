package common

import (
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// ── Custom messages ─────────────────────────────────────────────────────────

// RescanMsg asks the app to rescan the deck directory. The file watcher
// sends one per debounced burst of changes.
type RescanMsg struct{}

// ErrMsg carries an error to be displayed.
type ErrMsg struct{ Err error }

// InfoMsg carries an informational message.
type InfoMsg struct{ Text string }

// GotoMsg requests a scroll to a page by index.
type GotoMsg struct {
	Index    int
	Animated bool
}

// ToggleHelpMsg toggles the help overlay.
type ToggleHelpMsg struct{}

// MemoryWarningMsg reports that system memory crossed the configured
// threshold.
type MemoryWarningMsg struct{ UsedPercent float64 }

// CmdRescan asks the app to rescan the deck directory.
func CmdRescan() tea.Msg { return RescanMsg{} }

// CmdErr creates a tea.Cmd that sends an ErrMsg.
func CmdErr(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// CmdInfo creates a tea.Cmd that sends an InfoMsg.
func CmdInfo(text string) tea.Cmd {
	return func() tea.Msg { return InfoMsg{Text: text} }
}

// ── View interface ──────────────────────────────────────────────────────────

// View is a full-area screen the app shows instead of the pager, such as
// the empty-deck screen.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []components.HelpEntry
}
