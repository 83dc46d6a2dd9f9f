// Package tests holds shared contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/ports"
)

// RunLimiterContract verifies that a Limiter with exactly two slots honours
// the interface contract.
func RunLimiterContract(t *testing.T, limiter ports.Limiter) {
	ctx := context.Background()

	t.Run("Acquire and Release", func(t *testing.T) {
		release, err := limiter.Acquire(ctx)
		require.NoError(t, err)
		require.NoError(t, release(ctx))
	})

	t.Run("Blocks When Full", func(t *testing.T) {
		r1, err := limiter.Acquire(ctx)
		require.NoError(t, err)
		r2, err := limiter.Acquire(ctx)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = limiter.Acquire(short)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, r1(ctx))
		r3, err := limiter.Acquire(ctx)
		require.NoError(t, err, "a released slot is reusable")

		require.NoError(t, r2(ctx))
		require.NoError(t, r3(ctx))
	})

	t.Run("Canceled Context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		r1, err := limiter.Acquire(ctx)
		require.NoError(t, err)
		r2, err := limiter.Acquire(ctx)
		require.NoError(t, err)
		defer func() {
			_ = r1(ctx)
			_ = r2(ctx)
		}()

		_, err = limiter.Acquire(canceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
