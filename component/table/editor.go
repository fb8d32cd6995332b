package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/y7ut/settingsgrid/component/rowstore"
	"github.com/y7ut/settingsgrid/settings"
)

var (
	ErrInitialized = errors.New("table: editor already initialized")
	ErrNoColumns   = errors.New("table: no columns")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6EAF23"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Editor is an editable terminal table implementing settings.GridView. It is
// a sub-model: the hosting program forwards messages to Update and places View.
// All calls must come from the program's event loop.
type Editor struct {
	mount   string
	columns []settings.Column
	opts    settings.ViewOptions
	rows    *rowstore.Store

	row, col int

	editing bool
	editRef settings.RowRef
	editCol int
	input   textinput.Model

	keys   EditorKeyMap
	help   help.Model
	width  int
	height int
	notice string
}

func NewEditor() *Editor {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 1024
	return &Editor{
		input:  in,
		keys:   DefaultEditorKeyMap(),
		help:   help.New(),
		height: 12,
	}
}

func (e *Editor) Initialize(mount string, columns []settings.Column, opts settings.ViewOptions) error {
	if e.rows != nil {
		return ErrInitialized
	}
	if len(columns) == 0 {
		return ErrNoColumns
	}
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	e.mount = mount
	e.columns = append([]settings.Column(nil), columns...)
	e.opts = opts
	e.rows = rowstore.New(names)
	for i := 0; i < opts.InitRows; i++ {
		e.rows.Append()
	}
	e.keys.Insert.SetEnabled(!opts.Hide.Insert)
	e.keys.MoveUp.SetEnabled(!opts.Hide.MoveUp)
	e.keys.MoveDown.SetEnabled(!opts.Hide.MoveDown)
	return nil
}

// Load replaces the content. An edit in progress is abandoned: the row it
// belonged to no longer exists.
func (e *Editor) Load(rows settings.Snapshot) {
	if e.editing {
		e.stopEdit()
		e.notice = "table reloaded by server, edit discarded"
	}
	e.rows.Load(rows)
	e.clampCursor()
}

func (e *Editor) AllRows() settings.Snapshot       { return e.rows.All() }
func (e *Editor) RowValue(index int) settings.Row  { return e.rows.Value(index) }
func (e *Editor) RowIndex(ref settings.RowRef) int { return e.rows.Index(ref) }

func (e *Editor) Mount() string { return e.mount }

// Editing reports whether a cell edit is in progress.
func (e *Editor) Editing() bool { return e.editing }

// Cursor returns the selected row and column.
func (e *Editor) Cursor() (row, col int) { return e.row, e.col }

func (e *Editor) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.help.Width = width
	e.input.Width = width / 2
}

func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	if e.rows == nil {
		return nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.SetSize(msg.Width, msg.Height)
		return nil
	case tea.KeyMsg:
		if e.editing {
			return e.updateEditing(msg)
		}
		return e.updateBrowsing(msg)
	}
	if e.editing {
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return cmd
	}
	return nil
}

func (e *Editor) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	e.notice = ""
	switch {
	case key.Matches(msg, e.keys.Up):
		if e.row > 0 {
			e.row--
		}
	case key.Matches(msg, e.keys.Down):
		if e.row < e.rows.Len()-1 {
			e.row++
		}
	case key.Matches(msg, e.keys.Left):
		if e.col > 0 {
			e.col--
		}
	case key.Matches(msg, e.keys.Right):
		if e.col < len(e.columns)-1 {
			e.col++
		}
	case key.Matches(msg, e.keys.Edit):
		return e.beginEdit()
	case key.Matches(msg, e.keys.Append):
		e.rows.Append()
		e.row, e.col = e.rows.Len()-1, 0
		return e.beginEdit()
	case key.Matches(msg, e.keys.Insert):
		if _, err := e.rows.Insert(e.row); err != nil {
			return nil
		}
		e.col = 0
		return e.beginEdit()
	case key.Matches(msg, e.keys.Remove):
		if err := e.rows.Remove(e.row); err != nil {
			return nil
		}
		e.clampCursor()
		if e.opts.AfterRowRemoved != nil {
			e.opts.AfterRowRemoved()
		}
	case key.Matches(msg, e.keys.MoveUp):
		if e.rows.Swap(e.row, e.row-1) == nil {
			e.row--
		}
	case key.Matches(msg, e.keys.MoveDown):
		if e.rows.Swap(e.row, e.row+1) == nil {
			e.row++
		}
	case key.Matches(msg, e.keys.Help):
		e.help.ShowAll = !e.help.ShowAll
	}
	return nil
}

func (e *Editor) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, e.keys.Cancel):
		e.stopEdit()
		return nil
	case key.Matches(msg, e.keys.Commit):
		e.commit()
		return nil
	case key.Matches(msg, e.keys.Next):
		if !e.commit() || e.col >= len(e.columns)-1 {
			return nil
		}
		e.col++
		return e.beginEdit()
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *Editor) beginEdit() tea.Cmd {
	ref, err := e.rows.Ref(e.row)
	if err != nil {
		return nil
	}
	e.editing = true
	e.keys.editing = true
	e.editRef = ref
	e.editCol = e.col
	e.input.SetValue(e.rows.Cell(e.row, e.columns[e.col].Name))
	e.input.CursorEnd()
	return e.input.Focus()
}

func (e *Editor) stopEdit() {
	e.editing = false
	e.keys.editing = false
	e.input.Blur()
	e.input.Reset()
}

// commit stores the edited value and, when it differs from the old one, fires
// the column's change hook. It returns false when the row has disappeared.
func (e *Editor) commit() bool {
	value := e.input.Value()
	ref, column := e.editRef, e.columns[e.editCol]
	e.stopEdit()

	index := e.rows.Index(ref)
	if index < 0 {
		e.notice = "row no longer exists, edit discarded"
		return false
	}
	old := e.rows.Cell(index, column.Name)
	if _, err := e.rows.Set(ref, column.Name, value); err != nil {
		return false
	}
	e.row = index
	if value != old && column.OnChange != nil {
		column.OnChange(ref)
	}
	return true
}

func (e *Editor) clampCursor() {
	if e.row >= e.rows.Len() {
		e.row = e.rows.Len() - 1
	}
	if e.row < 0 {
		e.row = 0
	}
}

func (e *Editor) View() string {
	if e.rows == nil {
		return ""
	}
	names := e.rows.Columns()
	labels := make(map[string]string, len(e.columns))
	for i, c := range e.columns {
		label := c.Display
		if i == e.col {
			label = "▸" + label
		}
		labels[c.Name] = label
	}
	data := make([]map[string]string, 0, e.rows.Len())
	for _, r := range e.rows.All() {
		data = append(data, r)
	}
	columns, rows := NewMapGrid(data).SetHeaders(names...).DefineLabels(labels).Render()

	t := newBaseTable(columns, rows, e.tableHeight(), e.opts.Compact)
	if len(rows) > 0 {
		t.SetCursor(e.row)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(e.mount))
	b.WriteString(promptStyle.Render(fmt.Sprintf("  %d rows", e.rows.Len())))
	b.WriteString("\n")
	if e.opts.Compact {
		b.WriteString(baseStyle.Render(t.View()))
	} else {
		b.WriteString(baseStyle.Copy().Padding(0, 1).Render(t.View()))
	}
	b.WriteString("\n")
	if e.editing {
		b.WriteString(promptStyle.Render(e.columns[e.editCol].Display + " › "))
		b.WriteString(e.input.View())
		b.WriteString("\n")
	}
	if e.notice != "" {
		b.WriteString(noticeStyle.Render(e.notice))
		b.WriteString("\n")
	}
	b.WriteString(e.help.View(e.keys))
	return b.String()
}

func (e *Editor) tableHeight() int {
	h := e.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

var _ settings.GridView = (*Editor)(nil)
