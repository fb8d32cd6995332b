package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/conf"
	"github.com/y7ut/settingsgrid/pkg/file"
)

var startCmd = &cobra.Command{
	Use:   "start <grid>",
	Short: "Start the mirror of a grid in the background process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startProcess(cmd, args[0])
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <grid>",
	Short: "Stop the background mirror of a grid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopProcess(cmd, args[0])
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <grid>",
	Short: "Restart the background mirror of a grid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := stopProcess(cmd, args[0]); err != nil {
			return err
		}
		time.Sleep(time.Second)
		return startProcess(cmd, args[0])
	},
}

// pidPath is the pid file of the mirror of mount.
func pidPath(c *conf.Config, mount string) string {
	return filepath.Join(c.Runtime.Path, mount+".pid")
}

// readPid returns -1 when no mirror is recorded.
func readPid(pidFile string) (int, error) {
	content, err := os.ReadFile(pidFile)
	if os.IsNotExist(err) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return -1, fmt.Errorf("failed to parse pid file: %w", err)
	}
	return pid, nil
}

func startProcess(cmd *cobra.Command, mount string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := c.Grid(mount); err != nil {
		return err
	}
	if err := file.PathExistOrCreate(c.Runtime.Path); err != nil {
		return err
	}
	pidFile := pidPath(c, mount)
	pid, err := readPid(pidFile)
	if err != nil {
		return err
	}
	if pid != -1 {
		return fmt.Errorf("failed to start mirror: %s is already mirrored in pid[%d]", mount, pid)
	}

	configPath, _ := cmd.Flags().GetString("config")
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	runnerCmd := exec.Command(exe, "mirror", mount, "--config", configPath)
	runnerCmd.Env = os.Environ()

	logStd, err := file.OpenAppend(c.Runtime.Path, "start.log")
	if err != nil {
		return fmt.Errorf("failed to open start log file: %w", err)
	}
	defer logStd.Close()
	runnerCmd.Stderr = logStd
	runnerCmd.Stdout = logStd
	runnerCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := runnerCmd.Start(); err != nil {
		return fmt.Errorf("failed to start mirror: %w", err)
	}
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(runnerCmd.Process.Pid)), 0o644); err != nil {
		return fmt.Errorf("failed to record pid, you may not be able to stop the mirror with `settingsgrid stop %s`", mount)
	}
	fmt.Printf("🎏 mirror of %s started...\n", mount)
	return nil
}

func stopProcess(cmd *cobra.Command, mount string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pidFile := pidPath(c, mount)
	pid, err := readPid(pidFile)
	if err != nil {
		return err
	}
	if pid == -1 {
		return fmt.Errorf("mirror of %s is not running", mount)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process by pid: %d, reason: %w", pid, err)
	}
	signalErr := process.Signal(os.Interrupt)
	if err := os.Remove(pidFile); err != nil {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	if signalErr != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, signalErr)
	}

	fmt.Printf("🤚 mirror of %s stopped...\n", mount)
	return nil
}

func init() {
	RootCmd.AddCommand(startCmd)
	RootCmd.AddCommand(stopCmd)
	RootCmd.AddCommand(restartCmd)
}
