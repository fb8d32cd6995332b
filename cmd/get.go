package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/channel"
	"github.com/y7ut/settingsgrid/component/headless"
	"github.com/y7ut/settingsgrid/component/table"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/pkg/collection"
	"github.com/y7ut/settingsgrid/settings"
)

var GetCmd = &cobra.Command{
	Use:   "get <grid>",
	Short: "Print the current content of a settings table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return get(cmd, args[0])
	},
}

var (
	getJSON        bool
	getInteractive bool
	getFilter      string
)

// session is a short lived grid used by one shot commands.
type session struct {
	grid     *settings.SettingsGrid
	conn     *channel.Conn
	ch       settings.LiveChannel
	loop     *settings.Loop
	snapshot chan settings.Snapshot
	cancel   func()
}

// openSession connects to g without reconnection. Every snapshot the server
// pushes is delivered on snapshot.
func openSession(c *conf.Config, g conf.Grid) (*session, error) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := settings.NewLoop(16)
	go loop.Run(ctx)

	rec, waitAudit := startAudit(ctx, c)
	cfg := c.ChannelConfig()
	cfg.Reconnect = false
	conn := channel.New(cfg, loop.Post)

	s := &session{
		conn:     conn,
		ch:       tap(conn, rec),
		loop:     loop,
		snapshot: make(chan settings.Snapshot, 4),
	}
	s.cancel = func() {
		conn.Close()
		cancel()
		waitAudit()
	}

	view := headless.New()
	view.Observe(func(rows settings.Snapshot) {
		select {
		case s.snapshot <- rows:
		default:
		}
	})
	var err error
	loop.Do(func() {
		s.grid, err = settings.New(g.Mount, g.Endpoint, view, s.ch, g.Columns)
	})
	if err != nil {
		s.cancel()
		return nil, err
	}
	return s, nil
}

// next waits for the next snapshot pushed by the server.
func (s *session) next(d time.Duration) (settings.Snapshot, error) {
	select {
	case rows := <-s.snapshot:
		return rows, nil
	case <-s.conn.Done():
		if err := s.conn.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("connection closed by %s", s.conn.Endpoint())
	case <-time.After(d):
		return nil, fmt.Errorf("no snapshot from %s within %s", s.conn.Endpoint(), d)
	}
}

func (s *session) Close() { s.cancel() }

func get(cmd *cobra.Command, mount string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := c.Grid(mount)
	if err != nil {
		return err
	}
	closeLog, err := initLog(c, false)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := openSession(c, g)
	if err != nil {
		return err
	}
	rows, err := s.next(timeout)
	s.Close()
	if err != nil {
		return err
	}

	if getFilter != "" {
		column, value, ok := strings.Cut(getFilter, "=")
		if !ok {
			return fmt.Errorf("filter must look like column=value, got %q", getFilter)
		}
		rows = collection.Where(collection.New(rows), column, value).Value()
	}

	if getJSON {
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	data := snapshotGrid(s.grid.Columns(), rows)
	if getInteractive {
		caption := fmt.Sprintf("%s · %d rows", g.Endpoint, len(rows))
		_, err := tea.NewProgram(table.NewViewer(data, caption)).Run()
		return err
	}
	fmt.Println(table.Static(data))
	return nil
}

func snapshotGrid(columns []string, rows settings.Snapshot) table.Grid {
	data := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, r)
	}
	labels := make(map[string]string, len(columns))
	for _, name := range columns {
		labels[name] = settings.Label(name)
	}
	return table.NewMapGrid(data).SetHeaders(columns...).DefineLabels(labels)
}

func init() {
	GetCmd.Flags().BoolVar(&getJSON, "json", false, "print rows as json")
	GetCmd.Flags().BoolVarP(&getInteractive, "interactive", "i", false, "browse rows in a table")
	GetCmd.Flags().StringVarP(&getFilter, "filter", "f", "", "only rows where column=value")
	RootCmd.AddCommand(GetCmd)
}
