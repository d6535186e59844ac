package components

import (
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogResult is sent when the dialog is dismissed.
type DialogResult struct {
	Confirmed bool
	Value     string
	Tag       string // arbitrary tag to identify which dialog this was
}

// Dialog is a modal text input dialog. When Validate is set, enter only
// dismisses the dialog once the value passes; otherwise the error is shown
// under the input.
type Dialog struct {
	Title    string
	Tag      string
	Validate func(string) error
	input    textinput.Model
	err      error
	styles   ui.Styles
	visible  bool
}

// NewInputDialog creates a text input dialog.
func NewInputDialog(styles ui.Styles, title, placeholder, tag string) Dialog {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40
	return Dialog{
		Title:   title,
		Tag:     tag,
		input:   ti,
		styles:  styles,
		visible: true,
	}
}

// Visible returns whether the dialog is showing.
func (d Dialog) Visible() bool { return d.visible }

// Err returns the last validation error.
func (d Dialog) Err() error { return d.err }

// Update handles key events for the dialog.
func (d Dialog) Update(msg tea.Msg) (Dialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			d.visible = false
			return d, func() tea.Msg { return DialogResult{Tag: d.Tag} }

		case "enter":
			value := d.input.Value()
			if d.Validate != nil {
				if d.err = d.Validate(value); d.err != nil {
					return d, nil
				}
			}
			d.visible = false
			return d, func() tea.Msg {
				return DialogResult{Confirmed: true, Value: value, Tag: d.Tag}
			}
		}
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

// View renders the dialog.
func (d Dialog) View() string {
	if !d.visible {
		return ""
	}
	t := d.styles.Theme

	title := lipgloss.NewStyle().Foreground(t.Text).Bold(true).Render(d.Title)
	content := title + "\n\n" + d.input.View()
	if d.err != nil {
		content += "\n" + d.styles.Error.Render(d.err.Error())
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Width(50).
		Render(content)
}
