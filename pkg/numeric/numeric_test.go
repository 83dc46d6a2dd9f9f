package numeric_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/numeric"
	"github.com/aretw0/quiver/pkg/symbolic"
)

func compile(t *testing.T, src string) *numeric.Func {
	t.Helper()
	e, err := symbolic.NewParser("x", "y").Parse(src)
	require.NoError(t, err)
	p, err := numeric.Compile(e, "x", "y")
	require.NoError(t, err)
	f, err := numeric.Bind(p)
	require.NoError(t, err)
	return f
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		x, y float64
		want float64
	}{
		{"x + y", 2, 3, 5},
		{"x*y - 1", 2, 3, 5},
		{"x/y", 1, 4, 0.25},
		{"x**2 + y**3", 3, 2, 17},
		{"2**x", 10, 0, 1024},
		{"sin(x) + cos(y)", 0, 0, 1},
		{"exp(x)*log(y)", 0, math.E, 1},
		{"-x", 7, 0, -7},
		{"1.5*y", 0, 2, 3},
		{"3", 100, -100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := compile(t, tt.src).Eval(tt.x, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEval_PointErrors(t *testing.T) {
	f := compile(t, "x/y")
	_, err := f.Eval(1, 0)
	assert.ErrorIs(t, err, numeric.ErrDivisionByZero)
	assert.ErrorIs(t, err, domain.ErrPointDomain)

	_, err = compile(t, "log(x)").Eval(0, 1)
	assert.ErrorIs(t, err, numeric.ErrDomain)

	_, err = compile(t, "x**0.5").Eval(-4, 0)
	assert.ErrorIs(t, err, numeric.ErrDomain)

	_, err = compile(t, "y**(-2)").Eval(1, 0)
	assert.ErrorIs(t, err, numeric.ErrDivisionByZero)
}

func TestEval_NonFinitePassesThrough(t *testing.T) {
	got, err := compile(t, "exp(x)").Eval(1000, 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}

func TestCompile_UnboundVariable(t *testing.T) {
	e, err := symbolic.NewParser("x", "z").Parse("x + z")
	require.NoError(t, err)
	_, err = numeric.Compile(e, "x", "y")
	assert.ErrorContains(t, err, `"z"`)
}

func TestBind_Arity(t *testing.T) {
	e, err := symbolic.NewParser("x").Parse("x")
	require.NoError(t, err)
	p, err := numeric.Compile(e, "x")
	require.NoError(t, err)
	_, err = numeric.Bind(p)
	assert.Error(t, err)

	got, err := p.Eval(4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
	_, err = p.Eval(1, 2)
	assert.Error(t, err)
}

func TestProgram_JSON(t *testing.T) {
	f := compile(t, "sin(x)/y + 2**2000")
	data, err := json.Marshal(f.Program())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"+Inf"`)

	var back numeric.Program
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"x", "y"}, back.Vars())
	assert.Equal(t, f.Program().Len(), back.Len())

	got, err := back.Eval(0, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}

func TestProgram_UnmarshalRejectsBadStack(t *testing.T) {
	for _, data := range []string{
		`{"vars":["x","y"],"code":[]}`,
		`{"vars":["x","y"],"code":[{"op":"add","arity":2}]}`,
		`{"vars":["x","y"],"code":[{"op":"var","index":5}]}`,
		`{"vars":["x","y"],"code":[{"op":"const","value":"1"},{"op":"const","value":"2"}]}`,
		`{"vars":["x","y"],"code":[{"op":"jump"}]}`,
		`{"vars":["x","y"],"code":[{"op":"const","value":"one"}]}`,
	} {
		var p numeric.Program
		assert.Error(t, json.Unmarshal([]byte(data), &p), data)
	}
}

func TestFunctionFunc(t *testing.T) {
	var f numeric.Function = numeric.FunctionFunc(func(x, y float64) (float64, error) { return x * y, nil })
	got, err := f.Eval(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got)
}
