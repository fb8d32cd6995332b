package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/component/table"
	"github.com/y7ut/settingsgrid/settings"
)

var PutCmd = &cobra.Command{
	Use:   "put <grid> -f rows.json",
	Short: "Replace the content of a settings table and print what the server kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return put(cmd, args[0])
	},
}

var putFile string

func readRows(path string) (settings.Snapshot, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return settings.DecodeSnapshot(string(b))
}

func put(cmd *cobra.Command, mount string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := c.Grid(mount)
	if err != nil {
		return err
	}
	rows, err := readRows(putFile)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
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
	defer s.Close()

	// the server pushes its table on connect; wait for it so the echo below
	// is the answer to our put
	if _, err := s.next(timeout); err != nil {
		return err
	}
	text, err := settings.EncodePut(rows, s.grid.Columns()...)
	if err != nil {
		return err
	}
	if err := s.ch.Send(text); err != nil {
		return err
	}
	log.Printf("put %d rows to %s", len(rows), g.Endpoint)

	echo, err := s.next(timeout)
	if err != nil {
		return err
	}
	fmt.Println(table.Static(snapshotGrid(s.grid.Columns(), echo)))
	return nil
}

func init() {
	PutCmd.Flags().StringVarP(&putFile, "file", "f", "-", "json array of rows, - for stdin")
	RootCmd.AddCommand(PutCmd)
}
