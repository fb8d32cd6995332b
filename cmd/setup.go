package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/channel"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/pkg/file"
	"github.com/y7ut/settingsgrid/sender"
	"github.com/y7ut/settingsgrid/settings"
)

// checkconfig walks the user through creating a config file when path does
// not exist yet.
func checkconfig(path string) error {
	exist, err := file.PathExists(path)
	if err != nil || exist {
		return err
	}
	fmt.Println("🧸 config not found")
	if err := conf.Generate(promptInput).SaveTo(path); err != nil {
		return err
	}
	fmt.Println("Configuration file saved")
	return nil
}

func loadConfig(cmd *cobra.Command) (*conf.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := checkconfig(path); err != nil {
		return nil, err
	}
	return conf.Load(path)
}

// initLog sends the standard logger to the configured log file, and also to
// stderr when the terminal is not owned by a full screen program.
func initLog(c *conf.Config, stderr bool) (func(), error) {
	f, err := file.OpenAppend(c.Log.Path, c.Log.Name)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Default().SetFlags(log.LstdFlags)
	if stderr {
		log.Default().SetOutput(io.MultiWriter(f, os.Stderr))
	} else {
		log.Default().SetOutput(f)
	}
	return func() {
		log.Default().SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// selectGrids returns the grids named in args, or all of them.
func selectGrids(c *conf.Config, args []string) ([]conf.Grid, error) {
	if len(c.Grids) == 0 {
		return nil, fmt.Errorf("no [grid.<name>] section in config")
	}
	if len(args) == 0 {
		return c.Grids, nil
	}
	out := make([]conf.Grid, 0, len(args))
	for _, name := range args {
		g, err := c.Grid(name)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// startAudit starts the kafka audit trail when kafka is configured. The
// returned wait blocks until pending messages are flushed after ctx is done.
func startAudit(ctx context.Context, c *conf.Config) (channel.Recorder, func()) {
	brokers := c.KafkaBrokers()
	if len(brokers) == 0 {
		return nil, func() {}
	}
	audit := sender.NewAudit(sender.InitTopicWriter(brokers, c.Kafka.Topic), c.App.ID, c.Kafka.QueueSize, c.Kafka.Flush)
	done := make(chan struct{})
	go func() {
		audit.Run(ctx)
		close(done)
	}()
	log.Printf("audit trail to kafka topic %s", c.Kafka.Topic)
	return audit, func() { <-done }
}

func tap(ch settings.LiveChannel, rec channel.Recorder) settings.LiveChannel {
	if rec == nil {
		return ch
	}
	return channel.Tap(ch, rec)
}

// promptInput reads one answer from stdin.
func promptInput(prompt string) string {
	fmt.Print(prompt)
	var input string
	fmt.Scanln(&input)
	return input
}

func sign() <-chan os.Signal {
	c := make(chan os.Signal, 2)

	signals := []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

	// leave SIGHUP alone when it is ignored, as under nohup
	if !signal.Ignored(syscall.SIGHUP) {
		signals = append(signals, syscall.SIGHUP)
	}

	signal.Notify(c, signals...)

	return c
}
