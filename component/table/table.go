package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Grid is anything that can be laid out as table columns and rows.
type Grid interface {
	Render() ([]table.Column, []table.Row)
}

// MapKeys returns every key of m in no particular order.
func MapKeys[Key comparable, T any](m map[Key]T) []Key {
	s := make([]Key, 0, len(m))
	for k := range m {
		s = append(s, k)
	}
	return s
}

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("#6EAF23"))

// Viewer is a read-only table program.
type Viewer struct {
	keyMap keyMap
	table  table.Model
	help   help.Model
	board  string
}

func (m Viewer) Init() tea.Cmd { return nil }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Focus):
			if m.table.Focused() {
				m.table.Blur()
			} else {
				m.table.Focus()
			}
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keyMap.Enter):
			if row := m.table.SelectedRow(); row != nil {
				return m, tea.Printf("%s", strings.Join(row, " = "))
			}
			return m, nil
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Viewer) View() string {
	return baseStyle.Render(m.table.View()) + "\n" + m.board + "\n" + m.help.View(m.keyMap) + "\n"
}

func tableStyles(compact bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	if compact {
		s.Header = s.Header.Padding(0, 0, 0, 1)
		s.Cell = s.Cell.Padding(0, 0, 0, 1)
	}
	return s
}

func newBaseTable(columns []table.Column, rows []table.Row, height int, compact bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles(compact))
	return t
}

// NewViewer shows data with a one line caption under the table.
func NewViewer(data Grid, caption string) Viewer {
	columns, rows := data.Render()
	if caption == "" {
		caption = fmt.Sprintf("%d rows", len(rows))
	}
	height := len(rows) + 1
	if height > 20 {
		height = 20
	}
	return Viewer{DefaultTableKeyMap(), newBaseTable(columns, rows, height, false), help.New(), caption}
}

// Static renders data once, for output that is not a terminal program.
func Static(data Grid) string {
	columns, rows := data.Render()
	t := newBaseTable(columns, rows, len(rows)+1, true)
	t.Blur()
	s := tableStyles(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return baseStyle.Render(t.View())
}
