package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/pkg/config"
)

var fieldCmd = &cobra.Command{
	Use:   "field <equation>",
	Short: "Compute the direction field of an equation",
	Long: `Builds the direction field of dy/dx = <equation> over the configured grid.
Arguments are joined with spaces, so "quiver field x + y" works without quoting.`,
	Example: `  quiver field "x*y - sin(x)"
  quiver field --format yaml --scaling unit "exp(-x) + y"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		scaling, _ := cmd.Flags().GetString("scaling")
		tty := isTerminal(os.Stdout)
		if format == "" {
			format = cli.FormatJSON
			if tty {
				format = cli.FormatMarkdown
			}
		}

		rt, err := setup(cmd, func(cfg *config.Config) { applyGridFlags(cmd, cfg) })
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunField(ctx, rt, cmd.OutOrStdout(), cli.FieldOptions{
			Equation: strings.Join(args, " "),
			Format:   format,
			Scaling:  scaling,
			Render:   tty,
			Width:    terminalWidth(os.Stdout),
		})
	},
}

func applyGridFlags(cmd *cobra.Command, cfg *config.Config) {
	for name, dst := range map[string]*float64{
		"xmin": &cfg.Grid.XMin, "xmax": &cfg.Grid.XMax, "xstep": &cfg.Grid.XStep,
		"ymin": &cfg.Grid.YMin, "ymax": &cfg.Grid.YMax, "ystep": &cfg.Grid.YStep,
	} {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetFloat64(name)
		}
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
}

func init() {
	rootCmd.AddCommand(fieldCmd)

	fieldCmd.Flags().StringP("format", "f", "", fmt.Sprintf("Output format: %s (default markdown on a terminal, json otherwise)", strings.Join(cli.Formats, ", ")))
	fieldCmd.Flags().StringP("scaling", "s", "", "Vector scaling: root-linear, root-quadratic or unit")
	fieldCmd.Flags().Int("workers", 0, "Grid evaluation goroutines (0 uses every CPU)")
	d := config.Default().Grid
	fieldCmd.Flags().Float64("xmin", d.XMin, "First x coordinate")
	fieldCmd.Flags().Float64("xmax", d.XMax, "Last x coordinate")
	fieldCmd.Flags().Float64("xstep", d.XStep, "Spacing of x coordinates")
	fieldCmd.Flags().Float64("ymin", d.YMin, "First y coordinate")
	fieldCmd.Flags().Float64("ymax", d.YMax, "Last y coordinate")
	fieldCmd.Flags().Float64("ystep", d.YStep, "Spacing of y coordinates")
}
