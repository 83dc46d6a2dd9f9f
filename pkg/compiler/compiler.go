package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/numeric"
	"github.com/aretw0/quiver/pkg/ports"
	"github.com/aretw0/quiver/pkg/symbolic"
	"github.com/aretw0/quiver/pkg/validate"
)

// DefaultTimeout is the wall-clock budget for one compilation.
const DefaultTimeout = 5 * time.Second

// Variables are the free variables of a right-hand side f(x, y).
var Variables = []string{"x", "y"}

// Result is a successful compilation.
type Result struct {
	Expr symbolic.Expr // Read-only, for captions and typesetting
	Func *numeric.Func
}

// Compiler runs compilations in a sandbox.
type Compiler struct {
	sandbox ports.Sandbox
	limiter ports.Limiter
	timeout time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	newID   func() string
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithDefaultTimeout sets the timeout used when a call does not pass one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLimiter bounds concurrent workers. Waiting for a slot counts
// against the call's timeout.
func WithLimiter(l ports.Limiter) Option {
	return func(c *Compiler) {
		c.limiter = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers callbacks for compile events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Compiler) {
		c.hooks = hooks
	}
}

// New creates a Compiler backed by sandbox.
func New(sandbox ports.Sandbox, opts ...Option) *Compiler {
	c := &Compiler{
		sandbox: sandbox,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileOption adjusts a single call.
type CompileOption func(*callConfig)

type callConfig struct {
	timeout time.Duration
	silent  bool
}

// WithTimeout overrides the timeout for one call.
func WithTimeout(d time.Duration) CompileOption {
	return func(cc *callConfig) {
		if d > 0 {
			cc.timeout = d
		}
	}
}

// FailSilently turns a syntax error into a nil result.
func FailSilently() CompileOption {
	return func(cc *callConfig) {
		cc.silent = true
	}
}

// Compile parses text in the sandbox and returns its expression and
// numeric function.
//
// A nil result with a nil error means no verdict was reached: the worker
// timed out, ctx was canceled, or the worker died. Syntax errors are
// returned as *domain.SyntaxError unless FailSilently is given. An error
// wrapping domain.ErrSandbox means no worker could be started.
func (c *Compiler) Compile(ctx context.Context, text validate.Text, opts ...CompileOption) (*Result, error) {
	cc := callConfig{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cc)
	}

	id := c.newID()
	start := time.Now()
	deadline := start.Add(cc.timeout)
	log := c.logger.With("compile_id", id)

	ev := &domain.CompileEvent{
		EventBase:  domain.EventBase{Timestamp: start, Type: domain.EventCompileStart, ID: id},
		Expression: text.String(),
	}
	if c.hooks.OnCompileStart != nil {
		c.hooks.OnCompileStart(ctx, ev)
	}
	log.Debug("compile started", "expression", text.String(), "timeout", cc.timeout)

	res, outcome, err := c.run(ctx, id, text, deadline, log)

	ev = &domain.CompileEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventCompileFinish, ID: id},
		Expression: text.String(),
		Outcome:    outcome,
		Duration:   time.Since(start),
		Killed:     killed(err),
	}
	if c.hooks.OnCompileFinish != nil {
		c.hooks.OnCompileFinish(ctx, ev)
	}

	switch outcome {
	case domain.OutcomeOK:
		log.Debug("compile finished", "outcome", outcome, "duration", ev.Duration)
		return res, nil
	case domain.OutcomeSyntax:
		log.Debug("compile finished", "outcome", outcome, "duration", ev.Duration, "error", err)
		if cc.silent {
			return nil, nil
		}
		return nil, err
	case domain.OutcomeSandbox:
		log.Error("sandbox unavailable", "error", err)
		return nil, err
	default:
		log.Warn("compile reached no verdict", "outcome", outcome, "duration", ev.Duration, "error", err)
		return nil, nil
	}
}

func (c *Compiler) run(ctx context.Context, id string, text validate.Text, deadline time.Time, log *slog.Logger) (*Result, domain.CompileOutcome, error) {
	if c.limiter != nil {
		slotCtx, cancel := context.WithDeadline(ctx, deadline)
		release, err := c.limiter.Acquire(slotCtx)
		cancel()
		if err != nil {
			return nil, classify(ctx, err), err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Error("failed to release worker slot", "error", err)
			}
		}()
	}

	req := domain.CompileRequest{ID: id, Expression: text.String(), Variables: Variables}
	reply, err := c.sandbox.Run(ctx, req, time.Until(deadline))
	if err != nil {
		return nil, classify(ctx, err), err
	}
	return decode(text.String(), reply)
}

// killed reports whether err says a live worker was terminated.
// Limiter waits and contexts that ended before the worker started do not count.
func killed(err error) bool {
	return errors.Is(err, domain.ErrTimeout) || errors.Is(err, domain.ErrCanceled)
}

// classify maps a sandbox or limiter error to an outcome.
func classify(ctx context.Context, err error) domain.CompileOutcome {
	switch {
	case errors.Is(err, domain.ErrSandbox):
		return domain.OutcomeSandbox
	case errors.Is(err, domain.ErrTimeout):
		return domain.OutcomeTimeout
	case errors.Is(err, domain.ErrCanceled), ctx.Err() != nil:
		return domain.OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return domain.OutcomeTimeout
	case errors.Is(err, domain.ErrWorkerCrashed):
		return domain.OutcomeCrash
	}
	return domain.OutcomeSandbox
}

func decode(expression string, reply *domain.CompileReply) (*Result, domain.CompileOutcome, error) {
	if reply.Error != nil {
		if reply.Error.Kind == domain.ReplySyntax {
			return nil, domain.OutcomeSyntax, &domain.SyntaxError{
				Expression: expression,
				Pos:        reply.Error.Pos,
				Msg:        reply.Error.Message,
			}
		}
		return nil, domain.OutcomeCrash, fmt.Errorf("%w: %s", domain.ErrWorkerCrashed, reply.Error.Message)
	}

	expr, err := symbolic.Unmarshal(reply.Expr)
	if err != nil {
		return nil, domain.OutcomeCrash, fmt.Errorf("%w: %w", domain.ErrWorkerCrashed, err)
	}
	var prog numeric.Program
	if err := prog.UnmarshalJSON(reply.Program); err != nil {
		return nil, domain.OutcomeCrash, fmt.Errorf("%w: %w", domain.ErrWorkerCrashed, err)
	}
	fn, err := numeric.Bind(&prog)
	if err != nil {
		return nil, domain.OutcomeCrash, fmt.Errorf("%w: %w", domain.ErrWorkerCrashed, err)
	}
	return &Result{Expr: expr, Func: fn}, domain.OutcomeOK, nil
}

// FromExpr lowers an already built expression without the sandbox.
func FromExpr(expr symbolic.Expr) (*Result, error) {
	prog, err := numeric.Compile(expr, Variables...)
	if err != nil {
		return nil, err
	}
	fn, err := numeric.Bind(prog)
	if err != nil {
		return nil, err
	}
	return &Result{Expr: expr, Func: fn}, nil
}
