package quiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/compiler"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/grid"
	"github.com/aretw0/quiver/pkg/numeric"
	"github.com/aretw0/quiver/pkg/ports"
	"github.com/aretw0/quiver/pkg/symbolic"
	"github.com/aretw0/quiver/pkg/validate"
)

// Engine is the high-level entry point of the library.
type Engine struct {
	sandbox    ports.Sandbox
	limiter    ports.Limiter
	compiler   *compiler.Compiler
	grid       domain.Grid
	scaling    field.Scaling
	workers    int
	timeout    time.Duration
	skipChecks bool
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSandbox replaces the default process sandbox.
func WithSandbox(sb ports.Sandbox) Option {
	return func(e *Engine) {
		e.sandbox = sb
	}
}

// WithLimiter caps the number of concurrent sandbox workers.
func WithLimiter(l ports.Limiter) Option {
	return func(e *Engine) {
		e.limiter = l
	}
}

// WithTimeout sets the compile timeout (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithGrid sets the sampling grid (default -10..10 on both axes).
func WithGrid(g domain.Grid) Option {
	return func(e *Engine) {
		e.grid = g
	}
}

// WithScaling selects the field normalization.
func WithScaling(s field.Scaling) Option {
	return func(e *Engine) {
		e.scaling = s
	}
}

// WithWorkers evaluates grid points on n goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithoutValidation skips the input allow-list in BuildField. Only for
// callers whose text is trusted; compilation is still sandboxed.
func WithoutValidation() Option {
	return func(e *Engine) {
		e.skipChecks = true
	}
}

// New initializes an Engine.
// Without WithSandbox it re-executes the current binary as its worker, so
// the program must call process.ServeIfWorker(compiler.Serve) in main.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		grid:    domain.DefaultGrid(),
		scaling: field.DefaultScaling,
		workers: 1,
		timeout: compiler.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.grid.Len() == 0 {
		return nil, fmt.Errorf("%w: grid has no points", domain.ErrInvalidGrid)
	}

	if eng.sandbox == nil {
		sb, err := process.NewSandbox(process.WithLogger(eng.logger))
		if err != nil {
			return nil, err
		}
		eng.sandbox = sb
	}

	eng.compiler = compiler.New(eng.sandbox,
		compiler.WithDefaultTimeout(eng.timeout),
		compiler.WithLimiter(eng.limiter),
		compiler.WithLogger(eng.logger),
		compiler.WithLifecycleHooks(eng.hooks),
	)
	return eng, nil
}

// Grid returns the sampling grid.
func (e *Engine) Grid() domain.Grid { return e.grid }

// Validate checks untrusted text against the input allow-list.
func (e *Engine) Validate(text string) (validate.Text, error) {
	return validate.Validate(text)
}

// Compile parses validated text in the sandbox. See compiler.Compiler.
func (e *Engine) Compile(ctx context.Context, text validate.Text, opts ...compiler.CompileOption) (*compiler.Result, error) {
	return e.compiler.Compile(ctx, text, opts...)
}

// Evaluate samples f over the engine grid.
func (e *Engine) Evaluate(f numeric.Function) (*domain.RawField, error) {
	if f == nil {
		return nil, domain.ErrMissingFunction
	}
	return grid.Evaluate(f, e.grid, grid.WithWorkers(e.workers)), nil
}

// Normalize rescales a raw field with the engine scaling.
func (e *Engine) Normalize(raw *domain.RawField) *domain.VectorField {
	return field.Normalize(raw, field.WithScaling(e.scaling))
}

// BuildOption adjusts a single BuildField call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	scaling field.Scaling
}

// Scaled overrides the engine scaling for one field.
func Scaled(s field.Scaling) BuildOption {
	return func(c *buildConfig) {
		if s != "" {
			c.scaling = s
		}
	}
}

// BuildField validates, compiles, evaluates and normalizes text.
//
// When no usable function can be derived the field is nil and the error
// matches domain.ErrNoField; it also wraps the cause (invalid input, a
// syntax error, domain.ErrNoResult, or domain.ErrSandbox).
func (e *Engine) BuildField(ctx context.Context, text string, opts ...BuildOption) (*domain.VectorField, error) {
	cfg := buildConfig{scaling: e.scaling}
	for _, opt := range opts {
		opt(&cfg)
	}

	var checked validate.Text
	if e.skipChecks {
		checked = validate.Unchecked(text)
	} else {
		v, err := validate.Validate(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoField, err)
		}
		checked = v
	}

	res, err := e.compiler.Compile(ctx, checked)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoField, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoField, domain.ErrNoResult)
	}
	return e.fieldFrom(ctx, res, cfg.scaling), nil
}

// FieldFromExpr builds the field of an expression constructed in-process,
// skipping validation and the sandbox.
func (e *Engine) FieldFromExpr(ctx context.Context, expr symbolic.Expr) (*domain.VectorField, error) {
	if expr == nil {
		return nil, domain.ErrMissingFunction
	}
	res, err := compiler.FromExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNoField, err)
	}
	return e.fieldFrom(ctx, res, e.scaling), nil
}

func (e *Engine) fieldFrom(ctx context.Context, res *compiler.Result, scaling field.Scaling) *domain.VectorField {
	start := time.Now()
	raw := grid.Evaluate(res.Func, e.grid, grid.WithWorkers(e.workers))
	f := field.Normalize(raw, field.WithScaling(scaling))

	f.Expression = res.Expr.String()
	f.LaTeX = res.Expr.LaTeX()
	f.Caption = domain.Caption(f.LaTeX)

	ev := &domain.FieldEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventFieldReady},
		Expression: f.Expression,
		Points:     f.Len(),
		Degenerate: f.Degenerate(),
		Duration:   time.Since(start),
	}
	if e.hooks.OnField != nil {
		e.hooks.OnField(ctx, ev)
	}
	e.logger.Debug("field built", "expression", f.Expression, "points", ev.Points, "degenerate", ev.Degenerate)
	return f
}
