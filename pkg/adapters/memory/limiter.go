package memory

import (
	"context"
	"sync"

	"github.com/aretw0/quiver/pkg/ports"
)

// Limiter implements ports.Limiter with a counting semaphore.
// Safe for concurrent use.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a limiter admitting n concurrent holders (at least one).
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// Acquire takes a slot, blocking until one is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) (ports.ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-l.slots })
		return nil
	}, nil
}

// InUse returns the number of held slots.
func (l *Limiter) InUse() int { return len(l.slots) }

var _ ports.Limiter = (*Limiter)(nil)
