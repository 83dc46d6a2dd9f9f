package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/quiver/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP exposes rt to agents over the given transport.
func RunMCP(ctx context.Context, rt *Runtime, transport string, port int) error {
	srv := mcp.NewServer(rt.Engine,
		mcp.WithLogger(rt.Logger),
		mcp.WithMaxInputSize(rt.Config.MaxInputSize),
	)
	switch transport {
	case TransportStdio:
		rt.Logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		rt.Logger.Info("starting MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		rt.Logger.Info("MCP server stopped gracefully")
		return nil
	}
	return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
}
