// Package field rescales raw grid samples into a direction field.
package field

import (
	"fmt"
	"math"

	"github.com/aretw0/quiver/pkg/domain"
)

// Scaling selects how a raw (dx, dy) vector is shortened.
type Scaling string

const (
	// ScaleRootLinear divides by sqrt(n) with n = sqrt(dx + dy²).
	// For raw vectors dx is 1, so n is the length of (1, dy).
	ScaleRootLinear Scaling = "root-linear"
	// ScaleRootQuadratic divides by sqrt(n) with n = sqrt(dx² + dy²).
	ScaleRootQuadratic Scaling = "root-quadratic"
	// ScaleUnit divides by n = sqrt(dx² + dy²), giving unit vectors.
	ScaleUnit Scaling = "unit"

	// DefaultScaling is used when none is configured.
	DefaultScaling = ScaleRootLinear
)

// Scalings lists the supported scalings.
var Scalings = []Scaling{ScaleRootLinear, ScaleRootQuadratic, ScaleUnit}

// ParseScaling resolves a scaling name. The empty string is the default.
func ParseScaling(name string) (Scaling, error) {
	if name == "" {
		return DefaultScaling, nil
	}
	for _, s := range Scalings {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown scaling %q (want one of %v)", name, Scalings)
}

// Scale rescales v. ok is false when v is degenerate under s: the norm is
// zero, negative, NaN or infinite, or the quotient is not finite.
func (s Scaling) Scale(v domain.Vector) (domain.Vector, bool) {
	var n, d float64
	switch s {
	case ScaleRootQuadratic:
		n = math.Hypot(v.DX, v.DY)
		d = math.Sqrt(n)
	case ScaleUnit:
		n = math.Hypot(v.DX, v.DY)
		d = n
	default:
		n = math.Sqrt(v.DX + v.DY*v.DY)
		d = math.Sqrt(n)
	}
	if !(n > 0) || math.IsInf(n, 0) {
		return domain.Vector{}, false
	}
	out := domain.Vector{DX: v.DX / d, DY: v.DY / d}
	if !finite(out.DX) || !finite(out.DY) {
		return domain.Vector{}, false
	}
	return out, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

type options struct {
	scaling Scaling
}

// Option configures Normalize.
type Option func(*options)

// WithScaling selects the scaling.
func WithScaling(s Scaling) Option {
	return func(o *options) {
		if s != "" {
			o.scaling = s
		}
	}
}

// Normalize scales every OK sample of raw. Samples that were already
// failures stay zero; samples the scaling cannot handle become zero with
// StatusDegenerate. The result has exactly as many samples as raw.
func Normalize(raw *domain.RawField, opts ...Option) *domain.VectorField {
	o := options{scaling: DefaultScaling}
	for _, opt := range opts {
		opt(&o)
	}

	out := &domain.VectorField{
		Grid:    raw.Grid,
		Samples: make([]domain.Sample, len(raw.Samples)),
		Scaling: string(o.scaling),
	}
	for i, s := range raw.Samples {
		if !s.Status.OK() {
			out.Samples[i] = domain.Sample{Point: s.Point, Status: s.Status}
			continue
		}
		v, ok := o.scaling.Scale(s.Vector)
		if !ok {
			out.Samples[i] = domain.Sample{Point: s.Point, Status: domain.StatusDegenerate}
			continue
		}
		out.Samples[i] = domain.Sample{Point: s.Point, Vector: v, Status: domain.StatusOK}
	}
	return out
}
