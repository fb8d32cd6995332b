package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/conf"
)

var InitConfigCommand = &cobra.Command{
	Use:   "config",
	Short: "A tool to generate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateConfig(cmd)
	},
}

var createHelper bool

func generateConfig(cmd *cobra.Command) error {
	var prompt conf.Prompter
	if createHelper {
		fmt.Println("let's generate a config file for you: ")
		prompt = promptInput
	}

	confFile := cmd.Flag("file").Value.String()
	if err := conf.Generate(prompt).SaveTo(confFile); err != nil {
		return err
	}

	fmt.Println("Configuration file saved")
	return nil
}

func init() {
	InitConfigCommand.Flags().StringP("file", "f", conf.DefaultFile, "output file name")
	InitConfigCommand.Flags().BoolVarP(&createHelper, "step", "s", false, "create with helper ")
	RootCmd.AddCommand(InitConfigCommand)
}
