package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   __ _ _   _ (_)_   _____ _ __ `, "#38bdf8"},
	{`  / _' | | | || \ \ / / _ \ '__|`, "#22d3ee"},
	{` | (_| | |_| || |\ V /  __/ |   `, "#2dd4bf"},
	{`  \__, |\__,_||_| \_/ \___|_|   `, "#34d399"},
	{`     |_|                        `, "#4ade80"},
}

// PrintBanner writes the quiver banner to w using profile p.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
