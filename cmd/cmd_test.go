package cmd

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/dashboard"
	"github.com/y7ut/settingsgrid/settings"
)

// storeServer keeps one table and answers every put with the new table.
func storeServer(t *testing.T, table string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		mu.Lock()
		current := table
		mu.Unlock()
		if err := ws.WriteMessage(websocket.TextMessage, []byte(current)); err != nil {
			return
		}
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var put struct {
				Cmd  string            `json:"cmd"`
				Data []json.RawMessage `json:"data"`
			}
			if json.Unmarshal(data, &put) != nil || put.Cmd != "put" {
				continue
			}
			b, _ := json.Marshal(put.Data)
			mu.Lock()
			table = string(b)
			current = table
			mu.Unlock()
			if err := ws.WriteMessage(websocket.TextMessage, []byte(current)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConf(t *testing.T, endpoint string) *conf.Config {
	t.Helper()
	c := conf.Default()
	c.Log.Path = t.TempDir()
	c.Grids = []conf.Grid{{Mount: "settings", Endpoint: endpoint}}
	return c
}

func TestSessionGetAndPut(t *testing.T) {
	srv := storeServer(t, `[{"key":"a","value":"1"}]`)
	c := testConf(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	s, err := openSession(c, c.Grids[0])
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, settings.Snapshot{{"key": "a", "value": "1"}}, rows)
	assert.Equal(t, []string{"key", "value"}, s.grid.Columns())

	text, err := settings.EncodePut(settings.Snapshot{{"key": "b", "value": "2"}})
	require.NoError(t, err)
	require.NoError(t, s.ch.Send(text))

	echo, err := s.next(time.Second)
	require.NoError(t, err)
	assert.Equal(t, settings.Snapshot{{"key": "b", "value": "2"}}, echo)
}

func TestSessionUnreachable(t *testing.T) {
	srv := storeServer(t, `[]`)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c := testConf(t, endpoint)
	s, err := openSession(c, c.Grids[0])
	require.NoError(t, err)
	defer s.Close()

	_, err = s.next(2 * time.Second)
	assert.Error(t, err)
}

func TestSelectGrids(t *testing.T) {
	c := conf.Default()
	_, err := selectGrids(c, nil)
	assert.Error(t, err)

	c.Grids = []conf.Grid{{Mount: "a", Endpoint: "ws://h/a"}, {Mount: "b", Endpoint: "ws://h/b"}}
	all, err := selectGrids(c, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := selectGrids(c, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, "ws://h/b", one[0].Endpoint)

	_, err = selectGrids(c, []string{"c"})
	assert.ErrorIs(t, err, conf.ErrUnknownGrid)
}

func TestReadPid(t *testing.T) {
	dir := t.TempDir()
	c := conf.Default()
	c.Runtime.Path = dir
	p := pidPath(c, "servers")
	assert.Equal(t, filepath.Join(dir, "servers.pid"), p)

	pid, err := readPid(p)
	require.NoError(t, err)
	assert.Equal(t, -1, pid)

	require.NoError(t, os.WriteFile(p, []byte("4242\n"), 0o644))
	pid, err = readPid(p)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	require.NoError(t, os.WriteFile(p, []byte("nope"), 0o644))
	_, err = readPid(p)
	assert.Error(t, err)
}

func TestReadRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"name":"db","port":5432}]`), 0o644))
	rows, err := readRows(p)
	require.NoError(t, err)
	assert.Equal(t, settings.Snapshot{{"name": "db", "port": "5432"}}, rows)

	require.NoError(t, os.WriteFile(p, []byte(`{"cmd":"put"}`), 0o644))
	_, err = readRows(p)
	assert.Error(t, err)
}

func TestSnapshotGrid(t *testing.T) {
	columns, rows := snapshotGrid([]string{"name", "host"}, settings.Snapshot{{"name": "db", "host": "10.0.0.1", "extra": "x"}}).Render()
	require.Len(t, columns, 2)
	assert.Equal(t, "Name", columns[0].Title)
	assert.Equal(t, "Host", columns[1].Title)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"db", "10.0.0.1"}, []string(rows[0]))
}

func TestCheckconfigKeepsExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settingsgrid.conf")
	require.NoError(t, os.WriteFile(p, []byte("[grid.settings]\nendpoint = ws://h/settings\n"), 0o644))
	require.NoError(t, checkconfig(p))

	c, err := conf.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "ws://h/settings", c.Grids[0].Endpoint)
}

func TestInitLog(t *testing.T) {
	c := conf.Default()
	c.Log.Path = filepath.Join(t.TempDir(), "log")
	closeLog, err := initLog(c, false)
	require.NoError(t, err)
	log.Println("hello from test")
	closeLog()

	data, err := os.ReadFile(filepath.Join(c.Log.Path, c.Log.Name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestBuildTabsFailureClosesDialingGrids(t *testing.T) {
	srv := storeServer(t, `[{"key":"a","value":"1"}]`)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := testConf(t, endpoint)
	grids := []conf.Grid{
		{Mount: "settings", Endpoint: endpoint},
		{Mount: "broken", Endpoint: endpoint, Columns: []string{"key", "key"}},
	}

	model := dashboard.New()
	p := tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(io.Discard))

	errc := make(chan error, 1)
	go func() {
		_, err := buildTabs(c, grids, model, p, nil)
		errc <- err
	}()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, settings.ErrDuplicateColumn)
		assert.ErrorContains(t, err, "grid broken")
	case <-time.After(3 * time.Second):
		t.Fatal("buildTabs did not return after a grid failed")
	}
}

func TestBuildTabsCloseBeforeRun(t *testing.T) {
	srv := storeServer(t, `[]`)
	c := testConf(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	model := dashboard.New()
	p := tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(io.Discard))
	closeTabs, err := buildTabs(c, c.Grids, model, p, nil)
	require.NoError(t, err)
	require.Len(t, model.Tabs(), 1)

	done := make(chan struct{})
	go func() {
		closeTabs()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("closing tabs of a program that never ran blocked")
	}
}

func TestRootOwnsGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "timeout"} {
		assert.NotNil(t, RootCmd.PersistentFlags().Lookup(name), name)
		assert.Nil(t, GetCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "10s", RootCmd.PersistentFlags().Lookup("timeout").DefValue)

	for _, c := range []*cobra.Command{GetCmd, PutCmd, ListCmd} {
		f := c.InheritedFlags().Lookup("timeout")
		require.NotNil(t, f, c.Name())
		assert.Equal(t, "t", f.Shorthand)
	}
}
