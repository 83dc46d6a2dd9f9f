package main

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <equation>",
	Short: "Check an equation against the input allow-list",
	Long:  `Runs the character allow-list and adjacency checks only. Nothing is compiled.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		profile := termenv.NewOutput(os.Stdout).Profile
		err = cli.RunValidate(cmd.OutOrStdout(), profile, strings.Join(args, " "), cfg.MaxInputSize)
		if err != nil {
			// The verdict is already printed.
			os.Exit(cli.ExitCode(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
