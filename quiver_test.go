package quiver_test

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/compiler"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/numeric"
	"github.com/aretw0/quiver/pkg/symbolic"
)

func TestMain(m *testing.M) {
	process.ServeIfWorker(compiler.Serve)
	os.Exit(m.Run())
}

// inProcess compiles without spawning workers.
type inProcess struct{}

func (inProcess) Run(_ context.Context, req domain.CompileRequest, _ time.Duration) (*domain.CompileReply, error) {
	reply := compiler.Handle(req)
	return &reply, nil
}

func newEngine(t *testing.T, opts ...quiver.Option) *quiver.Engine {
	t.Helper()
	eng, err := quiver.New(append([]quiver.Option{quiver.WithSandbox(inProcess{})}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestBuildField_XPlusY(t *testing.T) {
	eng, err := quiver.New()
	require.NoError(t, err)

	f, err := eng.BuildField(context.Background(), "x + y")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 441, f.Len())

	// Raw (1, 0) has norm 1 and is left as is.
	v, ok := f.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, domain.Vector{DX: 1, DY: 0}, v)

	assert.Equal(t, "x + y", f.Expression)
	assert.Equal(t, `Direction field for $\frac{dy}{dx} = x + y$`, f.Caption)
	assert.Equal(t, string(field.ScaleRootLinear), f.Scaling)
}

func TestBuildField_DivisionByZeroRow(t *testing.T) {
	f, err := newEngine(t).BuildField(context.Background(), "x/y")
	require.NoError(t, err)
	require.Equal(t, 441, f.Len())

	for _, s := range f.Samples {
		if s.Y == 0 {
			assert.Equal(t, domain.Vector{}, s.Vector)
			assert.Equal(t, domain.StatusDomainError, s.Status)
		} else {
			assert.NotEqual(t, domain.Vector{}, s.Vector)
		}
	}
	assert.Equal(t, 21, f.Degenerate())
}

func TestBuildField_NoField(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	f, err := eng.BuildField(ctx, "__import__('os')")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrNoField)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f, err = eng.BuildField(ctx, "x y")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f, err = eng.BuildField(ctx, "x***y")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrNoField)
	assert.ErrorIs(t, err, domain.ErrSyntax)
}

func TestBuildField_WithoutValidation(t *testing.T) {
	eng := newEngine(t, quiver.WithoutValidation())

	// The allow-list rejects newlines; the parser treats them as blanks.
	f, err := eng.BuildField(context.Background(), "x\n+ y")
	require.NoError(t, err)
	assert.Equal(t, "x + y", f.Expression)

	_, err = eng.BuildField(context.Background(), "tan(x)")
	assert.ErrorIs(t, err, domain.ErrSyntax)
}

func TestBuildField_PathologicalInputTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a worker that runs until killed")
	}
	eng, err := quiver.New(quiver.WithTimeout(time.Second))
	require.NoError(t, err)

	start := time.Now()
	f, err := eng.BuildField(context.Background(), "9**9**9**9**9**9")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrNoField)
	assert.ErrorIs(t, err, domain.ErrNoResult)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestBuildField_Hooks(t *testing.T) {
	var mu sync.Mutex
	var outcomes []domain.CompileOutcome
	var fields []*domain.FieldEvent
	hooks := domain.LifecycleHooks{
		OnCompileFinish: func(_ context.Context, e *domain.CompileEvent) {
			mu.Lock()
			defer mu.Unlock()
			outcomes = append(outcomes, e.Outcome)
		},
		OnField: func(_ context.Context, e *domain.FieldEvent) {
			mu.Lock()
			defer mu.Unlock()
			fields = append(fields, e)
		},
	}
	eng := newEngine(t, quiver.WithLifecycleHooks(hooks), quiver.WithLimiter(memory.NewLimiter(2)))

	_, err := eng.BuildField(context.Background(), "log(x)")
	require.NoError(t, err)

	assert.Equal(t, []domain.CompileOutcome{domain.OutcomeOK}, outcomes)
	require.Len(t, fields, 1)
	assert.Equal(t, 441, fields[0].Points)
	// log is undefined for x <= 0: eleven columns of 21 points.
	assert.Equal(t, 231, fields[0].Degenerate)
}

func TestEngine_Steps(t *testing.T) {
	g, err := domain.NewGrid([]float64{0, 1}, []float64{0, 2})
	require.NoError(t, err)
	eng := newEngine(t, quiver.WithGrid(g), quiver.WithScaling(field.ScaleUnit), quiver.WithWorkers(2))
	ctx := context.Background()

	text, err := eng.Validate("x*y")
	require.NoError(t, err)
	res, err := eng.Compile(ctx, text)
	require.NoError(t, err)

	raw, err := eng.Evaluate(res.Func)
	require.NoError(t, err)
	require.Equal(t, 4, raw.Len())

	f := eng.Normalize(raw)
	v, ok := f.At(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 1/2.23606797749979, v.DX, 1e-12)
	assert.InDelta(t, 2/2.23606797749979, v.DY, 1e-12)

	_, err = eng.Evaluate(nil)
	assert.ErrorIs(t, err, domain.ErrMissingFunction)
}

func TestBuildField_Scaled(t *testing.T) {
	g, err := domain.NewGrid([]float64{0}, []float64{3})
	require.NoError(t, err)
	eng := newEngine(t, quiver.WithGrid(g))

	f, err := eng.BuildField(context.Background(), "y", quiver.Scaled(field.ScaleUnit))
	require.NoError(t, err)
	assert.Equal(t, "unit", f.Scaling)
	v, _ := f.At(0, 3)
	assert.InDelta(t, 1/math.Sqrt(10), v.DX, 1e-12)

	f, err = eng.BuildField(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, "root-linear", f.Scaling)
}

func TestFieldFromExpr(t *testing.T) {
	expr := symbolic.Sum(symbolic.Symbol("x"), symbolic.Int(1))
	f, err := newEngine(t).FieldFromExpr(context.Background(), expr)
	require.NoError(t, err)
	assert.Equal(t, "x + 1", f.Expression)
	assert.Equal(t, 441, f.Len())

	_, err = newEngine(t).FieldFromExpr(context.Background(), symbolic.Symbol("z"))
	assert.ErrorIs(t, err, domain.ErrNoField)

	_, err = newEngine(t).FieldFromExpr(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrMissingFunction)
}

func TestNew_EmptyGrid(t *testing.T) {
	_, err := quiver.New(quiver.WithSandbox(inProcess{}), quiver.WithGrid(domain.Grid{}))
	assert.ErrorIs(t, err, domain.ErrInvalidGrid)
}

var _ numeric.Function = (*numeric.Func)(nil)
