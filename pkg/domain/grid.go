package domain

import (
	"fmt"
	"math"
)

// Grid holds the ordered sample coordinates of a field.
// A field over the grid has exactly len(XRange)*len(YRange) samples.
type Grid struct {
	XRange []float64 `json:"xrange" yaml:"xrange"`
	YRange []float64 `json:"yrange" yaml:"yrange"`
}

// DefaultGrid returns the integer lattice -10..10 on both axes (441 points).
func DefaultGrid() Grid {
	axis, _ := Arange(-10, 11, 1)
	return Grid{XRange: axis, YRange: append([]float64(nil), axis...)}
}

// Arange returns evenly spaced values in [start, stop), matching numpy.arange.
func Arange(start, stop, step float64) ([]float64, error) {
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step must be finite and non-zero, got %v", ErrInvalidGrid, step)
	}
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(stop) || math.IsInf(stop, 0) {
		return nil, fmt.Errorf("%w: bounds must be finite", ErrInvalidGrid)
	}
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return []float64{}, nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// NewGrid builds a grid from explicit axes.
// Both axes must be non-empty and contain only finite values.
func NewGrid(xrange, yrange []float64) (Grid, error) {
	if len(xrange) == 0 || len(yrange) == 0 {
		return Grid{}, fmt.Errorf("%w: both axes need at least one coordinate", ErrInvalidGrid)
	}
	for _, axis := range [][]float64{xrange, yrange} {
		for _, v := range axis {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Grid{}, fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidGrid, v)
			}
		}
	}
	return Grid{
		XRange: append([]float64(nil), xrange...),
		YRange: append([]float64(nil), yrange...),
	}, nil
}

// Len returns the number of grid points.
func (g Grid) Len() int { return len(g.XRange) * len(g.YRange) }

// Points returns every coordinate in x-major order (outer loop over XRange).
func (g Grid) Points() []Point {
	pts := make([]Point, 0, g.Len())
	for _, a := range g.XRange {
		for _, b := range g.YRange {
			pts = append(pts, Point{X: a, Y: b})
		}
	}
	return pts
}

// index returns the position of (x, y) in x-major order, or -1.
func (g Grid) index(x, y float64) int {
	i, j := -1, -1
	for k, v := range g.XRange {
		if v == x {
			i = k
			break
		}
	}
	for k, v := range g.YRange {
		if v == y {
			j = k
			break
		}
	}
	if i < 0 || j < 0 {
		return -1
	}
	return i*len(g.YRange) + j
}
