package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCompileStart  EventType = "compile_start"
	EventCompileFinish EventType = "compile_finish"
	EventFieldReady    EventType = "field_ready"
)

// CompileOutcome classifies how a compile call ended.
type CompileOutcome string

const (
	OutcomeOK       CompileOutcome = "ok"
	OutcomeSyntax   CompileOutcome = "syntax_error"
	OutcomeTimeout  CompileOutcome = "timeout"
	OutcomeCanceled CompileOutcome = "canceled"
	OutcomeCrash    CompileOutcome = "crash"
	OutcomeSandbox  CompileOutcome = "sandbox_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ID        string    `json:"id"` // Correlation ID of the compile call
}

// CompileEvent is fired before and after every compile call.
type CompileEvent struct {
	EventBase
	Expression string         `json:"expression"`
	Outcome    CompileOutcome `json:"outcome,omitempty"`
	Duration   time.Duration  `json:"duration,omitempty"`
	Killed     bool           `json:"killed,omitempty"`
}

// FieldEvent is fired when a vector field has been normalized.
type FieldEvent struct {
	EventBase
	Expression string        `json:"expression"`
	Points     int           `json:"points"`
	Degenerate int           `json:"degenerate"`
	Duration   time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCompileStart  func(context.Context, *CompileEvent)
	OnCompileFinish func(context.Context, *CompileEvent)
	OnField         func(context.Context, *FieldEvent)
}
