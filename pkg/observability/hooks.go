package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/quiver/pkg/domain"
)

// LogHooks returns hooks that log every event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompileStart: func(ctx context.Context, e *domain.CompileEvent) {
			logger.DebugContext(ctx, "compile_start", "compile_id", e.ID, "expression", e.Expression)
		},
		OnCompileFinish: func(ctx context.Context, e *domain.CompileEvent) {
			level := slog.LevelInfo
			if e.Outcome != domain.OutcomeOK && e.Outcome != domain.OutcomeSyntax {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "compile_finish",
				"compile_id", e.ID,
				"outcome", e.Outcome,
				"duration", e.Duration,
				"killed", e.Killed,
			)
		},
		OnField: func(ctx context.Context, e *domain.FieldEvent) {
			logger.InfoContext(ctx, "field_ready",
				"expression", e.Expression,
				"points", e.Points,
				"degenerate", e.Degenerate,
				"duration", e.Duration,
			)
		},
	}
}

// Chain combines hooks; each event is delivered in argument order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnCompileStart = chainCompile(out.OnCompileStart, h.OnCompileStart)
		out.OnCompileFinish = chainCompile(out.OnCompileFinish, h.OnCompileFinish)
		out.OnField = chainField(out.OnField, h.OnField)
	}
	return out
}

func chainCompile(a, b func(context.Context, *domain.CompileEvent)) func(context.Context, *domain.CompileEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.CompileEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainField(a, b func(context.Context, *domain.FieldEvent)) func(context.Context, *domain.FieldEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.FieldEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
