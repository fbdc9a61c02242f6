package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Refresh   key.Binding
	Station   key.Binding
	Direction key.Binding
	Quit      key.Binding
	Submit    key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Station: key.NewBinding(
			key.WithKeys("s", "/"),
			key.WithHelp("s", "station"),
		),
		Direction: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "direction"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Station, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// promptKeys is the help shown while typing a station
type promptKeys struct {
	keyMap
}

func (k promptKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Direction, k.Cancel}
}

func (k promptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
