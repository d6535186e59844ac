package app

import (
	"strings"

	"github.com/Akashdeep-Patra/zed-page-view/internal/config"
	"github.com/Akashdeep-Patra/zed-page-view/internal/ui/components"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global keybindings used across the application.
// Paging keys move between pages; scroll keys move within the shown page.
type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Next       key.Binding
	Prev       key.Binding
	First      key.Binding
	Last       key.Binding
	Goto       key.Binding
	Up         key.Binding
	Down       key.Binding
	HalfUp     key.Binding
	HalfDown   key.Binding
	Rescan     key.Binding
	Reload     key.Binding
	ToggleAnim key.Binding
	Back       key.Binding
}

// NewKeyMap builds the keymap from configured bindings.
func NewKeyMap(kb config.KeyBindings) KeyMap {
	return KeyMap{
		Quit:       binding(kb.Quit, "quit"),
		Help:       binding(kb.Help, "help"),
		Next:       binding(kb.Next, "next page"),
		Prev:       binding(kb.Prev, "previous page"),
		First:      binding(kb.First, "first page"),
		Last:       binding(kb.Last, "last page"),
		Goto:       binding(kb.Goto, "go to page"),
		Up:         binding(kb.Up, "scroll up"),
		Down:       binding(kb.Down, "scroll down"),
		HalfUp:     binding(kb.HalfUp, "half page up"),
		HalfDown:   binding(kb.HalfDown, "half page down"),
		Rescan:     binding(kb.Rescan, "rescan"),
		Reload:     binding(kb.Reload, "reload page"),
		ToggleAnim: binding(kb.ToggleAnim, "toggle animation"),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.DefaultKeyBindings())
}

func binding(keys []string, desc string) key.Binding {
	b := key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKeys(keys), desc))
	if len(keys) == 0 {
		b.SetEnabled(false)
	}
	return b
}

// helpKeys renders keys the way the help overlay shows them.
func helpKeys(keys []string) string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		switch k {
		case " ":
			k = "space"
		case "left":
			k = "←"
		case "right":
			k = "→"
		case "up":
			k = "↑"
		case "down":
			k = "↓"
		}
		names = append(names, k)
	}
	return strings.Join(names, " / ")
}

// HelpSections groups the bindings for the help overlay.
func (k KeyMap) HelpSections() map[string][]components.HelpEntry {
	entries := func(bs ...key.Binding) []components.HelpEntry {
		out := make([]components.HelpEntry, 0, len(bs))
		for _, b := range bs {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			out = append(out, components.HelpEntry{Key: h.Key, Desc: h.Desc})
		}
		return out
	}
	return map[string][]components.HelpEntry{
		"Paging":  entries(k.Next, k.Prev, k.First, k.Last, k.Goto, k.ToggleAnim),
		"Page":    entries(k.Down, k.Up, k.HalfDown, k.HalfUp),
		"Mouse":   components.MouseHelpEntries(),
		"General": entries(k.Rescan, k.Reload, k.Help, k.Quit),
	}
}
