package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	NextChart    key.Binding
	PrevChart    key.Binding
	Treemap      key.Binding
	Flamegraph   key.Binding
	Sunburst     key.Binding
	Enter        key.Binding
	Back         key.Binding
	Unfocus      key.Binding
	Dark         key.Binding
	OpenExplorer key.Binding
	Preview      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextChart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next chart"),
		),
		PrevChart: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous chart"),
		),
		Treemap: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "treemap"),
		),
		Flamegraph: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "flamegraph"),
		),
		Sunburst: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sunburst"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus hovered"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("⌫", "up one level"),
		),
		Unfocus: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "unfocus"),
		),
		Dark: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle dark"),
		),
		OpenExplorer: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in file manager"),
		),
		Preview: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "preview"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a brief help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextChart, k.Enter, k.Back, k.Unfocus, k.Dark, k.Help, k.Quit}
}

// FullHelp returns all help bindings
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextChart, k.PrevChart, k.Treemap, k.Flamegraph, k.Sunburst},
		{k.Enter, k.Back, k.Unfocus},
		{k.Dark, k.OpenExplorer, k.Preview},
		{k.Help, k.Quit},
	}
}
