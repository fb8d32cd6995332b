package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/conf"
)

var RootCmd = &cobra.Command{
	Use:   "settingsgrid",
	Short: "Edit live settings tables served over websocket",
	Long: `
           __  __  _                              _     __
   ________/ /_/ /_(_)___  ____ ______   ______ (_)___/ /
  / ___/ _ \/ __/ __/ / __ \/ __ '/ ___/  / __ '/ / __  /
 (__  )  __/ /_/ /_/ / / / / /_/ (__  )  / /_/ / / /_/ /
/____/\___/\__/\__/_/_/ /_/\__, /____/   \__, /_/\__,_/
                          /____/        /____/
`,
	SilenceUsage: true,
}

// timeout bounds how long one shot commands wait for the server.
var timeout time.Duration

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", conf.DefaultFile, "config settingsgrid file")
	RootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "how long to wait for the server")
}
