package main

import "github.com/charmbracelet/bubbles/key"

// keyMap 终端播放器按键绑定
type keyMap struct {
	Advance key.Binding
	Replay  key.Binding
	Swap    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Advance: key.NewBinding(
			key.WithKeys(" ", "space", "enter", "e"),
			key.WithHelp("space/enter", "advance"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		Swap: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "swap character"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a short help string
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Quit, k.Help}
}

// FullHelp returns the full help string
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Advance, k.Replay, k.Swap},
		{k.Help, k.Quit},
	}
}
