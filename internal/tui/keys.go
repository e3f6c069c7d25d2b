package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Execute key.Binding
	Edit    key.Binding
	Revert  key.Binding
	Save    key.Binding
	New     key.Binding
	Help    key.Binding
	Quit    key.Binding
}

type promptKeyMap struct {
	Save    key.Binding
	Discard key.Binding
	Cancel  key.Binding
}

type editKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

// Keys holds the bindings of the main screen.
var Keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
	Execute: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open/act"),
	),
	Edit: key.NewBinding(
		key.WithKeys("a", "e"),
		key.WithHelp("a", "append"),
	),
	Revert: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "revert"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s", "w"),
		key.WithHelp("w", "save"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new note"),
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

// PromptKeys holds the bindings of the unsaved-changes prompt.
var PromptKeys = promptKeyMap{
	Save: key.NewBinding(
		key.WithKeys("s", "y"),
		key.WithHelp("s", "save"),
	),
	Discard: key.NewBinding(
		key.WithKeys("d", "n"),
		key.WithHelp("d", "discard"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("c", "esc", "ctrl+c"),
		key.WithHelp("c/esc", "cancel"),
	),
}

// EditKeys holds the bindings of the append editor.
var EditKeys = editKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "append line"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "stop editing"),
	),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Focus, k.Execute, k.Edit, k.Save, k.Revert, k.New, k.Quit}
}

func (k promptKeyMap) help() []key.Binding {
	return []key.Binding{k.Save, k.Discard, k.Cancel}
}

func (k editKeyMap) help() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}
