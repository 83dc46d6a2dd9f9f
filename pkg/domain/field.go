package domain

import "fmt"

// Point is a grid coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vector is a (dx, dy) pair.
type Vector struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}

// Status records how a sample was obtained.
type Status uint8

const (
	// StatusOK means the function was evaluated and the vector scaled.
	StatusOK Status = iota
	// StatusDomainError means evaluation failed at this point (division by zero, log of a non-positive number...).
	StatusDomainError
	// StatusNonFinite means evaluation returned NaN or an infinity.
	StatusNonFinite
	// StatusDegenerate means the normalizer could not scale the raw vector.
	StatusDegenerate
)

var statusNames = [...]string{"ok", "domain_error", "non_finite", "degenerate"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// OK reports whether the sample carries a reliable direction.
func (s Status) OK() bool { return s == StatusOK }

// Sample is one grid point and its vector.
// A sample whose Status is not StatusOK always has a zero Vector.
type Sample struct {
	Point  `yaml:",inline"`
	Vector `yaml:",inline"`
	Status Status `json:"status" yaml:"status"`
}

// RawField holds the unscaled samples produced by the grid evaluator.
type RawField struct {
	Grid    Grid     `json:"grid"`
	Samples []Sample `json:"samples"`
}

// Len returns the number of samples.
func (f *RawField) Len() int { return len(f.Samples) }

// At returns the raw sample at (x, y).
func (f *RawField) At(x, y float64) (Sample, bool) {
	return sampleAt(f.Grid, f.Samples, x, y)
}

// VectorField is the normalized field handed to renderers and serializers.
type VectorField struct {
	Grid       Grid     `json:"grid"`
	Samples    []Sample `json:"samples"`
	Scaling    string   `json:"scaling"`
	Expression string   `json:"expression,omitempty"`
	LaTeX      string   `json:"latex,omitempty"`
	Caption    string   `json:"caption,omitempty"`
}

// Len returns the number of samples, always Grid.Len().
func (f *VectorField) Len() int { return len(f.Samples) }

// At returns the vector at (x, y).
func (f *VectorField) At(x, y float64) (Vector, bool) {
	s, ok := sampleAt(f.Grid, f.Samples, x, y)
	return s.Vector, ok
}

// Sample returns the full sample at (x, y).
func (f *VectorField) Sample(x, y float64) (Sample, bool) {
	return sampleAt(f.Grid, f.Samples, x, y)
}

// Map returns the coordinate -> (dx, dy) mapping.
func (f *VectorField) Map() map[Point]Vector {
	m := make(map[Point]Vector, len(f.Samples))
	for _, s := range f.Samples {
		m[s.Point] = s.Vector
	}
	return m
}

// Degenerate counts the samples without a reliable direction.
func (f *VectorField) Degenerate() int {
	n := 0
	for _, s := range f.Samples {
		if !s.Status.OK() {
			n++
		}
	}
	return n
}

// Caption formats the plot title for a typeset right-hand side.
func Caption(latex string) string {
	return `Direction field for $\frac{dy}{dx} = ` + latex + `$`
}

func sampleAt(g Grid, samples []Sample, x, y float64) (Sample, bool) {
	i := g.index(x, y)
	if i < 0 || i >= len(samples) {
		return Sample{}, false
	}
	return samples[i], true
}
