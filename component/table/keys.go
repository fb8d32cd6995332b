package table

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	base  table.KeyMap
	Enter key.Binding
	Quit  key.Binding
	Help  key.Binding
	Focus key.Binding
}

func DefaultTableKeyMap() keyMap {
	return keyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "print row"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Focus: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "focus"),
		),
		base: table.DefaultKeyMap(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.base.LineUp, k.base.LineDown, k.Enter, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.base.LineUp, k.base.LineDown},
		{k.base.GotoTop, k.base.GotoBottom},
		{k.base.PageUp, k.base.PageDown},
		{k.Quit, k.Focus},
	}
}

// EditorKeyMap holds the bindings of an Editor. Insert, MoveUp and MoveDown
// are disabled when the grid hides those affordances.
type EditorKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Edit     key.Binding
	Append   key.Binding
	Insert   key.Binding
	Remove   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Help     key.Binding

	Commit key.Binding
	Next   key.Binding
	Cancel key.Binding

	editing bool
}

func DefaultEditorKeyMap() EditorKeyMap {
	return EditorKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev column")),
		Right:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next column")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit cell")),
		Append:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		Insert:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert row")),
		Remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove row")),
		MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		Commit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "save & next")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k EditorKeyMap) ShortHelp() []key.Binding {
	if k.editing {
		return []key.Binding{k.Commit, k.Next, k.Cancel}
	}
	return []key.Binding{k.Edit, k.Append, k.Remove, k.Help}
}

func (k EditorKeyMap) FullHelp() [][]key.Binding {
	if k.editing {
		return [][]key.Binding{{k.Commit, k.Next, k.Cancel}}
	}
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Append, k.Insert, k.Remove},
		{k.MoveUp, k.MoveDown, k.Help},
	}
}
