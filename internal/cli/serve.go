package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	httpAdapter "github.com/aretw0/quiver/pkg/adapters/http"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the HTTP surface of rt.
func NewHTTPHandler(rt *Runtime) http.Handler {
	return httpAdapter.NewHandler(rt.Engine,
		httpAdapter.WithLogger(rt.Logger),
		httpAdapter.WithMetrics(rt.Metrics.Handler()),
		httpAdapter.WithMaxInputSize(rt.Config.MaxInputSize),
	)
}

// RunServe serves HTTP on port until ctx is cancelled.
func RunServe(ctx context.Context, rt *Runtime, w io.Writer, port int) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           NewHTTPHandler(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Starting Quiver server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		printSystemMessage(w, "Quiver server stopped gracefully")
		return nil
	}
}
