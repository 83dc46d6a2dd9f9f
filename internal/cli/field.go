package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/presentation/tui"
	httpAdapter "github.com/aretw0/quiver/pkg/adapters/http"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/validate"
)

// Output formats of the field command.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatData     = "data"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatJSON, FormatYAML, FormatData, FormatMarkdown}

// FieldOptions configures RunField.
type FieldOptions struct {
	Equation string
	Format   string
	Scaling  string
	// Render pretty-prints markdown through glamour (interactive terminals).
	Render bool
	Width  int
}

// RunField builds the field of an equation and writes it to w.
func RunField(ctx context.Context, rt *Runtime, w io.Writer, opts FieldOptions) error {
	var build []quiver.BuildOption
	if opts.Scaling != "" {
		sc, err := field.ParseScaling(opts.Scaling)
		if err != nil {
			return err
		}
		build = append(build, quiver.Scaled(sc))
	}

	text, err := validate.Sanitize(opts.Equation, rt.Config.MaxInputSize)
	if err != nil {
		return err
	}
	f, err := rt.Engine.BuildField(ctx, text, build...)
	if err != nil {
		return err
	}
	return writeField(w, f, opts)
}

func writeField(w io.Writer, f *domain.VectorField, opts FieldOptions) error {
	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatData:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(httpAdapter.DataDocument(f))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		md := tui.FieldMarkdown(f)
		if opts.Render {
			render, err := tui.NewRenderer(opts.Width)
			if err != nil {
				return fmt.Errorf("failed to create renderer: %w", err)
			}
			out, err := render(md)
			if err != nil {
				return fmt.Errorf("failed to render markdown: %w", err)
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	}
	return fmt.Errorf("unknown format %q (want one of %v)", opts.Format, Formats)
}
