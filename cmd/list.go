package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/component/table"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/pkg/collection"
	"github.com/y7ut/settingsgrid/settings"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the settings tables of the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return list(cmd)
	},
}

var listInteractive bool

type gridItem struct {
	Mount    string `grid_column:"Grid" grid_sort:"1"`
	Endpoint string `grid_column:"Endpoint" grid_sort:"2"`
	Columns  string `grid_column:"Columns" grid_sort:"3"`
}

func list(cmd *cobra.Command) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	items := collection.New(c.Grids).Sort(func(i, j conf.Grid) bool {
		return i.Mount < j.Mount
	}).Value()
	rows := make([]*gridItem, 0, len(items))
	for _, g := range items {
		columns := g.Columns
		if columns == nil {
			columns = settings.DefaultColumns
		}
		rows = append(rows, &gridItem{Mount: g.Mount, Endpoint: g.Endpoint, Columns: strings.Join(columns, ", ")})
	}

	oh := table.NewGrid(rows)
	if listInteractive {
		_, err := tea.NewProgram(table.NewViewer(oh, "")).Run()
		return err
	}
	fmt.Println(table.Static(oh))
	return nil
}

func init() {
	ListCmd.Flags().BoolVarP(&listInteractive, "interactive", "i", false, "browse grids in a table")
	RootCmd.AddCommand(ListCmd)
}
