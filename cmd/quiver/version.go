package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quiver",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quiver version %s\n", strings.TrimSpace(quiver.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
