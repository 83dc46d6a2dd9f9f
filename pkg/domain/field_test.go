package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Text(t *testing.T) {
	b, err := StatusDegenerate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "degenerate", string(b))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("domain_error")))
	assert.Equal(t, StatusDomainError, s)
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestVectorField_Lookup(t *testing.T) {
	g := Grid{XRange: []float64{0, 1}, YRange: []float64{0, 1}}
	f := &VectorField{Grid: g}
	for _, p := range g.Points() {
		s := Sample{Point: p, Vector: Vector{DX: 1, DY: p.X + p.Y}}
		if p.X == 0 && p.Y == 0 {
			s = Sample{Point: p, Status: StatusDegenerate}
		}
		f.Samples = append(f.Samples, s)
	}

	v, ok := f.At(1, 0)
	require.True(t, ok)
	assert.Equal(t, Vector{DX: 1, DY: 1}, v)

	_, ok = f.At(5, 5)
	assert.False(t, ok)

	assert.Equal(t, 1, f.Degenerate())
	assert.Len(t, f.Map(), 4)
	assert.Equal(t, Vector{}, f.Map()[Point{}])
}

func TestSample_JSONIsFlat(t *testing.T) {
	data, err := json.Marshal(Sample{Point: Point{X: 1, Y: 2}, Vector: Vector{DX: 3, DY: 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":2,"dx":3,"dy":4,"status":"ok"}`, string(data))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, `Direction field for $\frac{dy}{dx} = x + y$`, Caption("x + y"))
}
