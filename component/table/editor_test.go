package table

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/y7ut/settingsgrid/settings"
)

type fakeChannel struct {
	handler func(string) error
	sent    []string
}

func (f *fakeChannel) Connect(string) error { return nil }

func (f *fakeChannel) Send(text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChannel) OnMessage(h func(string) error) { f.handler = h }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(e *Editor, msgs ...tea.KeyMsg) {
	for _, m := range msgs {
		e.Update(m)
	}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	right = tea.KeyMsg{Type: tea.KeyRight}
	ctrlU = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func newEditorGrid(t *testing.T, columns []string) (*Editor, *fakeChannel) {
	t.Helper()
	e := NewEditor()
	ch := &fakeChannel{}
	_, err := settings.New("settings", "ws://localhost/settings", e, ch, columns)
	require.NoError(t, err)
	return e, ch
}

func putData(t *testing.T, text string) settings.Snapshot {
	t.Helper()
	var cmd settings.PutCommand
	require.NoError(t, json.Unmarshal([]byte(text), &cmd))
	require.Equal(t, settings.CmdPut, cmd.Cmd)
	return cmd.Data
}

func TestEditorEditCellSendsPut(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"}]`))

	// select the value column, clear it and type 2
	press(e, right, enter, ctrlU, runes("2"), enter)

	assert.False(t, e.Editing())
	require.Len(t, ch.sent, 1)
	assert.JSONEq(t, `{"cmd":"put","data":[{"key":"a","value":"2"}]}`, ch.sent[0])
}

func TestEditorUnchangedCellSendsNothing(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"}]`))

	press(e, enter, enter)
	assert.Empty(t, ch.sent)

	press(e, enter, runes("x"), esc)
	assert.Empty(t, ch.sent)
	assert.Equal(t, settings.Snapshot{{"key": "a", "value": "1"}}, e.AllRows())
}

func TestEditorNewRowWaitsForEveryColumn(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"}]`))

	// a appends a row and starts editing its first cell
	press(e, runes("a"))
	require.True(t, e.Editing())
	press(e, runes("b"), tab)
	assert.Empty(t, ch.sent, "row without value must not be sent")
	assert.True(t, e.Editing(), "tab moves on to the next cell")

	press(e, runes("2"), enter)
	require.Len(t, ch.sent, 1)
	assert.Equal(t, settings.Snapshot{
		{"key": "a", "value": "1"},
		{"key": "b", "value": "2"},
	}, putData(t, ch.sent[0]))
}

func TestEditorRemoveRow(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"},{"key":"b","value":"2"}]`))

	press(e, runes("d"))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, settings.Snapshot{{"key": "b", "value": "2"}}, putData(t, ch.sent[0]))

	press(e, runes("d"))
	require.Len(t, ch.sent, 2)
	assert.Empty(t, putData(t, ch.sent[1]))

	// nothing left to remove
	press(e, runes("d"))
	assert.Len(t, ch.sent, 2)
}

func TestEditorHiddenAffordances(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"},{"key":"b","value":"2"}]`))

	press(e, runes("i"), runes("J"), down, runes("K"))
	assert.False(t, e.Editing())
	assert.Equal(t, settings.Snapshot{{"key": "a", "value": "1"}, {"key": "b", "value": "2"}}, e.AllRows())
	assert.Empty(t, ch.sent)
}

func TestEditorMoveAndInsertWhenShown(t *testing.T) {
	e := NewEditor()
	require.NoError(t, e.Initialize("m", []settings.Column{{Name: "key", Display: "Key"}}, settings.ViewOptions{}))
	e.Load(settings.Snapshot{{"key": "a"}, {"key": "b"}})

	press(e, runes("J"))
	assert.Equal(t, settings.Snapshot{{"key": "b"}, {"key": "a"}}, e.AllRows())
	row, _ := e.Cursor()
	assert.Equal(t, 1, row)

	press(e, runes("K"))
	assert.Equal(t, settings.Snapshot{{"key": "a"}, {"key": "b"}}, e.AllRows())

	press(e, runes("i"), runes("z"), enter)
	assert.Equal(t, settings.Snapshot{{"key": "z"}, {"key": "a"}, {"key": "b"}}, e.AllRows())
}

func TestEditorInboundDuringEdit(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"}]`))

	press(e, enter, runes("zz"))
	require.True(t, e.Editing())
	require.NoError(t, ch.handler(`[{"key":"c","value":"3"}]`))

	assert.False(t, e.Editing())
	assert.Equal(t, settings.Snapshot{{"key": "c", "value": "3"}}, e.AllRows())
	assert.Contains(t, e.View(), "edit discarded")
	assert.Empty(t, ch.sent)
}

func TestEditorView(t *testing.T) {
	e, ch := newEditorGrid(t, []string{"name", "host", "port"})
	require.NoError(t, ch.handler(`[{"name":"db","host":"10.0.0.1","port":"5432"}]`))

	out := e.View()
	for _, want := range []string{"settings", "▸Name", "Host", "Port", "db", "10.0.0.1", "5432"} {
		assert.True(t, strings.Contains(out, want), "view should contain %q:\n%s", want, out)
	}
}

func TestEditorCursorClamp(t *testing.T) {
	e, ch := newEditorGrid(t, nil)
	require.NoError(t, ch.handler(`[{"key":"a","value":"1"},{"key":"b","value":"2"},{"key":"c","value":"3"}]`))
	press(e, down, down, down)
	row, _ := e.Cursor()
	assert.Equal(t, 2, row)

	require.NoError(t, ch.handler(`[{"key":"a","value":"1"}]`))
	row, _ = e.Cursor()
	assert.Equal(t, 0, row)
}
