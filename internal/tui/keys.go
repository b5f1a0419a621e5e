package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// Bot controls
	StartStop     key.Binding
	ToggleTrading key.Binding
	CycleAsset    key.Binding
	CycleTime     key.Binding
	ConfUp        key.Binding
	ConfDown      key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	StartStop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/stop bot")),
	ToggleTrading: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle trading")),
	CycleAsset:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "cycle asset")),
	CycleTime:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle timeframe")),
	ConfUp:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise confidence")),
	ConfDown:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower confidence")),
}
