package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "quiver",
	Short: "Direction fields for dy/dx = f(x, y)",
	Long: `Quiver compiles an untrusted equation in a sandboxed worker, samples it over a grid
and normalizes the result into a direction field.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("env-file", ".env", "File with QUIVER_* variables")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Compile timeout (overrides config)")
}

// loadConfig resolves config file, env and the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := cli.LoadConfig(path, envFile)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	return cfg, nil
}

// setup loads the config and builds the runtime.
func setup(cmd *cobra.Command, mutate func(*config.Config)) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.LogLevel, debug)
	if err != nil {
		return nil, err
	}
	return cli.Setup(cfg, logger)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
