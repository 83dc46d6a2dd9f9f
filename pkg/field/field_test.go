package field_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
)

func raw(samples ...domain.Sample) *domain.RawField {
	xs := make([]float64, len(samples))
	for i := range samples {
		xs[i] = float64(i)
		samples[i].Point = domain.Point{X: float64(i)}
	}
	return &domain.RawField{Grid: domain.Grid{XRange: xs, YRange: []float64{0}}, Samples: samples}
}

func ok(dx, dy float64) domain.Sample {
	return domain.Sample{Vector: domain.Vector{DX: dx, DY: dy}}
}

func TestScale(t *testing.T) {
	tests := []struct {
		scaling field.Scaling
		in      domain.Vector
		want    domain.Vector
	}{
		{field.ScaleRootLinear, domain.Vector{DX: 1, DY: 0}, domain.Vector{DX: 1, DY: 0}},
		// n = sqrt(1 + 9) = sqrt(10); divide by 10^(1/4)
		{field.ScaleRootLinear, domain.Vector{DX: 1, DY: 3}, domain.Vector{DX: 1 / math.Pow(10, 0.25), DY: 3 / math.Pow(10, 0.25)}},
		// n = 5; divide by sqrt(5)
		{field.ScaleRootQuadratic, domain.Vector{DX: 3, DY: 4}, domain.Vector{DX: 3 / math.Sqrt(5), DY: 4 / math.Sqrt(5)}},
		{field.ScaleUnit, domain.Vector{DX: 3, DY: 4}, domain.Vector{DX: 0.6, DY: 0.8}},
	}
	for _, tt := range tests {
		t.Run(string(tt.scaling), func(t *testing.T) {
			got, ok := tt.scaling.Scale(tt.in)
			require.True(t, ok)
			assert.InDelta(t, tt.want.DX, got.DX, 1e-12)
			assert.InDelta(t, tt.want.DY, got.DY, 1e-12)
		})
	}
}

func TestScale_Degenerate(t *testing.T) {
	for _, s := range field.Scalings {
		for _, v := range []domain.Vector{
			{},
			{DX: math.NaN(), DY: 1},
			{DX: 1, DY: math.Inf(1)},
			{DX: 1, DY: 1e300},
		} {
			got, ok := s.Scale(v)
			if s != field.ScaleRootLinear && v.DY == 1e300 {
				assert.True(t, ok, "%s %v", s, v)
				continue
			}
			assert.False(t, ok, "%s %v", s, v)
			assert.Equal(t, domain.Vector{}, got)
		}
	}

	// Negative radicand: dx + dy² < 0.
	_, ok := field.ScaleRootLinear.Scale(domain.Vector{DX: -5, DY: 1})
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	in := raw(
		ok(1, 0),
		domain.Sample{Status: domain.StatusDomainError},
		domain.Sample{Status: domain.StatusNonFinite},
		ok(0, 0),
		ok(1, 3),
	)
	f := field.Normalize(in)

	require.Equal(t, in.Len(), f.Len())
	assert.Equal(t, string(field.ScaleRootLinear), f.Scaling)
	assert.Equal(t, domain.Vector{DX: 1, DY: 0}, f.Samples[0].Vector)
	assert.Equal(t, domain.StatusDomainError, f.Samples[1].Status)
	assert.Equal(t, domain.StatusNonFinite, f.Samples[2].Status)
	assert.Equal(t, domain.StatusDegenerate, f.Samples[3].Status)
	assert.Equal(t, domain.Vector{}, f.Samples[3].Vector)
	assert.Equal(t, domain.StatusOK, f.Samples[4].Status)
	assert.Equal(t, in.Samples[4].Point, f.Samples[4].Point)
	assert.Equal(t, 3, f.Degenerate())
}

func TestNormalize_ZeroStaysZero(t *testing.T) {
	for _, s := range field.Scalings {
		f := field.Normalize(raw(ok(0, 0)), field.WithScaling(s))
		assert.Equal(t, domain.Vector{}, f.Samples[0].Vector, s)
	}
}

func TestParseScaling(t *testing.T) {
	s, err := field.ParseScaling("")
	require.NoError(t, err)
	assert.Equal(t, field.DefaultScaling, s)

	s, err = field.ParseScaling("unit")
	require.NoError(t, err)
	assert.Equal(t, field.ScaleUnit, s)

	_, err = field.ParseScaling("log")
	assert.Error(t, err)
}
