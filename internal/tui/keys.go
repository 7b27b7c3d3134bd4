package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the filter view. Each binding maps to
// one query source event.
type KeyMap struct {
	Focus   key.Binding // Only while the search box is unfocused.
	Blur    key.Binding // Only while the search box is focused.
	Cancel  key.Binding
	Confirm key.Binding
	Clear   key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Focus: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Blur: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "leave search"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open single match"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("C-l", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}

// ShortHelp returns the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Cancel, k.Confirm, k.Clear, k.Quit}
}

// FullHelp returns every binding, grouped by purpose
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Blur},
		{k.Cancel, k.Confirm, k.Clear},
		{k.Quit},
	}
}
