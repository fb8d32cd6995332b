package cmd

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/channel"
	"github.com/y7ut/settingsgrid/component/table"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/dashboard"
	"github.com/y7ut/settingsgrid/settings"
)

var EditCmd = &cobra.Command{
	Use:   "edit [grid...]",
	Short: "Edit settings tables in the terminal, one tab per grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, args)
	},
}

func edit(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	grids, err := selectGrids(c, args)
	if err != nil {
		return err
	}
	closeLog, err := initLog(c, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	rec, waitAudit := startAudit(ctx, c)
	defer func() {
		cancel()
		waitAudit()
	}()

	model := dashboard.New()
	p := tea.NewProgram(model, tea.WithAltScreen())
	closeTabs, err := buildTabs(c, grids, model, p, rec)
	if err != nil {
		return err
	}
	defer closeTabs()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// buildTabs binds one editor tab per grid to p. Connections start dialing
// right away and their events wait for p to run, so on failure p is killed
// before the connections already made are closed.
func buildTabs(c *conf.Config, grids []conf.Grid, model *dashboard.Model, p *tea.Program, rec channel.Recorder) (func(), error) {
	dispatch := dashboard.Dispatch(p)
	conns := make([]*channel.Conn, 0, len(grids))
	closeAll := func() {
		p.Kill()
		for _, conn := range conns {
			conn.Close()
		}
	}
	for _, g := range grids {
		conn := channel.New(c.ChannelConfig(), dispatch)
		editor := table.NewEditor()
		t := model.AddTab(editor, g.Endpoint)
		conn.OnState(t.SetState)
		conns = append(conns, conn)
		if _, err := settings.New(g.Mount, g.Endpoint, editor, tap(conn, rec), g.Columns); err != nil {
			closeAll()
			return nil, fmt.Errorf("grid %s: %w", g.Mount, err)
		}
		log.Printf("editing %s at %s", g.Mount, g.Endpoint)
	}
	return closeAll, nil
}

func init() {
	RootCmd.AddCommand(EditCmd)
}
