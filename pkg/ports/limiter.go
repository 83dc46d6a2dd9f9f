package ports

import "context"

// ReleaseFunc returns a slot obtained from a Limiter.
type ReleaseFunc func(ctx context.Context) error

// Limiter rations concurrent sandbox workers.
type Limiter interface {
	// Acquire blocks until a slot is free or ctx is done.
	// The returned ReleaseFunc MUST be called exactly once.
	Acquire(ctx context.Context) (ReleaseFunc, error)
}
