package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGrid(t *testing.T) {
	g := DefaultGrid()
	require.Len(t, g.XRange, 21)
	require.Len(t, g.YRange, 21)
	assert.Equal(t, -10.0, g.XRange[0])
	assert.Equal(t, 10.0, g.XRange[20])
	assert.Equal(t, 441, g.Len())
}

func TestArange(t *testing.T) {
	got, err := Arange(0, 1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, got)

	got, err = Arange(3, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, got)

	got, err = Arange(1, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Arange(0, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = Arange(0, math.Inf(1), 1)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestNewGrid(t *testing.T) {
	x := []float64{1, 2}
	g, err := NewGrid(x, []float64{5})
	require.NoError(t, err)
	x[0] = 99
	assert.Equal(t, 1.0, g.XRange[0], "axes are copied")

	_, err = NewGrid(nil, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = NewGrid([]float64{math.NaN()}, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestGrid_PointsXMajor(t *testing.T) {
	g := Grid{XRange: []float64{0, 1}, YRange: []float64{10, 20, 30}}
	pts := g.Points()
	require.Len(t, pts, 6)
	assert.Equal(t, Point{X: 0, Y: 10}, pts[0])
	assert.Equal(t, Point{X: 0, Y: 30}, pts[2])
	assert.Equal(t, Point{X: 1, Y: 10}, pts[3])
	assert.Equal(t, 4, g.index(1, 20))
	assert.Equal(t, -1, g.index(2, 20))
}
