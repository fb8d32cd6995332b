package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/y7ut/settingsgrid/channel"
	"github.com/y7ut/settingsgrid/component/table"
	"github.com/y7ut/settingsgrid/settings"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	openStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6EAF23"))
	downStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

// dispatchMsg carries a callback that must run on the program's event loop.
type dispatchMsg func()

// Dispatch returns a settings.Dispatcher that hands callbacks to p. Channel
// events then reach the grids from the same goroutine that handles keys.
func Dispatch(p *tea.Program) settings.Dispatcher {
	return func(fn func()) {
		p.Send(dispatchMsg(fn))
	}
}

// Tab is one settings table shown by the dashboard.
type Tab struct {
	Editor   *table.Editor
	endpoint string
	state    channel.State
}

// SetState records the connection state shown in the status line. It must
// be called from the event loop, usually through channel.Conn.OnState.
func (t *Tab) SetState(s channel.State) { t.state = s }

func (t *Tab) State() channel.State { return t.state }

type keyMap struct {
	Prev key.Binding
	Next key.Binding
	Pick key.Binding
	Quit key.Binding
	Kill key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev tab")),
		Next: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next tab")),
		Pick: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9")),
		Quit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Kill: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// Model is the dashboard program. It is used through a pointer so the
// editors it owns stay addressable by their grids.
type Model struct {
	tabs   []*Tab
	active int
	keys   keyMap
	width  int
	height int
}

func New() *Model {
	return &Model{keys: defaultKeyMap()}
}

// AddTab registers an editor. The editor is expected to be bound to a
// SettingsGrid before the program starts.
func (m *Model) AddTab(editor *table.Editor, endpoint string) *Tab {
	t := &Tab{Editor: editor, endpoint: endpoint, state: channel.Connecting}
	m.tabs = append(m.tabs, t)
	if m.width > 0 {
		editor.SetSize(m.width, m.height-2)
	}
	return t
}

func (m *Model) Tabs() []*Tab { return m.tabs }

// Active returns the index of the visible tab.
func (m *Model) Active() int { return m.active }

func (m *Model) current() *Tab {
	if len(m.tabs) == 0 {
		return nil
	}
	return m.tabs[m.active]
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg()
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, t := range m.tabs {
			t.Editor.SetSize(msg.Width, msg.Height-2)
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Kill) {
			return m, tea.Quit
		}
		tab := m.current()
		if tab == nil {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if !tab.Editor.Editing() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Prev):
				m.active = (m.active + len(m.tabs) - 1) % len(m.tabs)
				return m, nil
			case key.Matches(msg, m.keys.Next):
				m.active = (m.active + 1) % len(m.tabs)
				return m, nil
			case key.Matches(msg, m.keys.Pick):
				if n := int(msg.Runes[0] - '1'); n < len(m.tabs) {
					m.active = n
				}
				return m, nil
			}
		}
		return m, tab.Editor.Update(msg)
	}
	if tab := m.current(); tab != nil {
		return m, tab.Editor.Update(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	tab := m.current()
	if tab == nil {
		return "no grid configured\n"
	}
	var b strings.Builder
	if len(m.tabs) > 1 {
		names := make([]string, 0, len(m.tabs))
		for i, t := range m.tabs {
			label := fmt.Sprintf("%d %s", i+1, t.Editor.Mount())
			if i == m.active {
				names = append(names, activeTabStyle.Render(label))
			} else {
				names = append(names, inactiveTabStyle.Render(label))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, names...))
		b.WriteString("\n")
	}
	b.WriteString(tab.Editor.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(tab.endpoint + " "))
	b.WriteString(stateStyle(tab.state).Render(tab.state.String()))
	b.WriteString("\n")
	return b.String()
}

func stateStyle(s channel.State) lipgloss.Style {
	switch s {
	case channel.Open:
		return openStyle
	case channel.Disconnected, channel.Closed:
		return downStyle
	}
	return statusStyle
}
