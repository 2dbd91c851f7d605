package ui

import "github.com/charmbracelet/bubbles/key"

type appKeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k appKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Back, k.Help, k.Quit}
}

func (k appKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Back},
		{k.Help, k.Quit},
	}
}

var appKeys = appKeyMap{
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "siguiente sección"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "sección anterior"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace", "esc"),
		key.WithHelp("⌫", "atrás"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "ayuda"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "salir"),
	),
}
