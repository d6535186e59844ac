package views

import (
	"strings"

	"github.com/Akashdeep-Patra/zed-page-view/internal/common"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EmptyView is shown in place of the pager while the deck has no pages.
type EmptyView struct {
	dir    string
	exts   []string
	styles ui.Styles
	width  int
	height int
}

// NewEmptyView creates the empty-deck screen for dir.
func NewEmptyView(dir string, exts []string, styles ui.Styles) *EmptyView {
	return &EmptyView{dir: dir, exts: exts, styles: styles}
}

func (v *EmptyView) Init() tea.Cmd                           { return nil }
func (v *EmptyView) Update(_ tea.Msg) (common.View, tea.Cmd) { return v, nil }
func (v *EmptyView) SetSize(w, h int)                        { v.width = w; v.height = h }

func (v *EmptyView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{{Key: "r", Desc: "Rescan"}}
}

func (v *EmptyView) View() string {
	title := lipgloss.NewStyle().Foreground(v.styles.Theme.TextMuted).Render("No pages in " + v.dir)
	hint := v.styles.Muted.Render("Add files ending in " + strings.Join(v.exts, ", ") + " and they will appear here.")
	return ui.PlaceCentre(v.width, v.height, title+"\n\n"+hint)
}
