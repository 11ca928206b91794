package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Triage
	Keep  key.Binding
	Trash key.Binding

	// List navigation
	Up   key.Binding
	Down key.Binding

	// Views
	Progress key.Binding
	TrashBin key.Binding
	Albums   key.Binding
	Back     key.Binding

	// Trash actions
	Recover key.Binding
	Delete  key.Binding

	// Global
	Refresh  key.Binding
	ResetAll key.Binding
	Help     key.Binding
	Quit     key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Keep: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "keep"),
		),
		Trash: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "trash"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Progress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "progress"),
		),
		TrashBin: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trash bin"),
		),
		Albums: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "albums"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Recover: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "recover"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete forever"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan library"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset all"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Trash, k.Keep, k.Progress, k.TrashBin, k.Albums, k.Help, k.Quit}
}

// FullHelp returns all bindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Keep, k.Trash, k.Up, k.Down},
		{k.Progress, k.TrashBin, k.Albums, k.Back},
		{k.Recover, k.Delete, k.Refresh, k.ResetAll},
		{k.Help, k.Quit},
	}
}
