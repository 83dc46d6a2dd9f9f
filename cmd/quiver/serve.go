package main

import (
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes /field, /data, /validate, /schema, /metrics and the OpenAPI document over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, func(cfg *config.Config) {
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
			}
		})
		if err != nil {
			return err
		}
		defer rt.Close()

		if isTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, termenv.NewOutput(os.Stdout).Profile)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunServe(ctx, rt, os.Stdout, rt.Config.HTTP.Port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", config.Default().HTTP.Port, "Port to listen on")
}
