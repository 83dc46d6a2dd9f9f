package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/quiver/pkg/domain"
)

// arrows are ordered counter-clockwise starting east.
var arrows = []rune("→↗↑↖←↙↓↘")

// Arrow returns the glyph closest to the direction of v, or '·' when the
// sample has no reliable direction.
func Arrow(s domain.Sample) rune {
	if !s.Status.OK() || (s.DX == 0 && s.DY == 0) {
		return '·'
	}
	angle := math.Atan2(s.DY, s.DX)
	octant := int(math.Round(angle/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return arrows[octant]
}

// ArrowGrid draws the field one glyph per point, highest y first.
func ArrowGrid(f *domain.VectorField) string {
	var b strings.Builder
	ys := f.Grid.YRange
	for j := len(ys) - 1; j >= 0; j-- {
		for i, x := range f.Grid.XRange {
			if i > 0 {
				b.WriteByte(' ')
			}
			s, _ := f.Sample(x, ys[j])
			b.WriteRune(Arrow(s))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FieldMarkdown describes f as a Markdown document.
func FieldMarkdown(f *domain.VectorField) string {
	counts := map[domain.Status]int{}
	for _, s := range f.Samples {
		counts[s.Status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# dy/dx = %s\n\n", f.Expression)
	fmt.Fprintf(&b, "%s\n\n", f.Caption)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Expression | `%s` |\n", f.Expression)
	fmt.Fprintf(&b, "| Scaling | %s |\n", f.Scaling)
	fmt.Fprintf(&b, "| Points | %d |\n", f.Len())
	if n := len(f.Grid.XRange); n > 0 {
		fmt.Fprintf(&b, "| X | %g .. %g (%d) |\n", f.Grid.XRange[0], f.Grid.XRange[n-1], n)
	}
	if n := len(f.Grid.YRange); n > 0 {
		fmt.Fprintf(&b, "| Y | %g .. %g (%d) |\n", f.Grid.YRange[0], f.Grid.YRange[n-1], n)
	}
	for st := domain.StatusDomainError; st <= domain.StatusDegenerate; st++ {
		if counts[st] > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", st, counts[st])
		}
	}
	b.WriteString("\n```\n")
	b.WriteString(ArrowGrid(f))
	b.WriteString("```\n")
	return b.String()
}

// Verdict formats a validation result, coloured with profile p.
func Verdict(p termenv.Profile, equation string, err error) string {
	if err == nil {
		return termenv.String("✔ ").Foreground(p.Color("#4ade80")).String() + equation
	}
	return termenv.String("✘ ").Foreground(p.Color("#f87171")).String() + err.Error()
}
