package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/pkg/file"
)

var (
	num  int
	feed bool
)

var LogCommand = &cobra.Command{
	Use:   "logs",
	Short: "Show logs of settingsgrid",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return logs(filepath.Join(c.Log.Path, c.Log.Name))
	},
}

func logs(logFile string) error {
	f, err := os.Open(logFile)
	if err != nil {
		return err
	}
	lines, err := file.TailLines(f, num)
	f.Close()
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	if !feed {
		return nil
	}

	tailer, err := tail.TailFile(logFile, tail.Config{
		ReOpen:    true,
		Follow:    true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		MustExist: true,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer tailer.Cleanup()

	go func() {
		for line := range tailer.Lines {
			fmt.Println(line.Text)
		}
	}()

	for s := range sign() {
		switch s {
		case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			return tailer.Stop()
		}
	}
	return nil
}

func init() {
	LogCommand.Flags().IntVarP(&num, "number", "n", 5, "get last number line of logs")
	LogCommand.Flags().BoolVarP(&feed, "feed", "f", false, "feed logs")
	RootCmd.AddCommand(LogCommand)
}
