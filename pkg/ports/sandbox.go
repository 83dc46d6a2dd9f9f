package ports

import (
	"context"
	"time"

	"github.com/aretw0/quiver/pkg/domain"
)

// Sandbox runs untrusted compile work outside the caller's failure domain.
type Sandbox interface {
	// Run hands req to a fresh worker and waits at most timeout for its reply.
	// When the wait ends without a reply the worker is forcibly terminated
	// before Run returns. The error is then domain.ErrTimeout, or
	// domain.ErrCanceled joined with the context error. A context that is
	// already done is returned as is, without starting a worker. Otherwise the error is
	// domain.ErrWorkerCrashed, or domain.ErrSandbox when no worker could be started.
	Run(ctx context.Context, req domain.CompileRequest, timeout time.Duration) (*domain.CompileReply, error)
}
