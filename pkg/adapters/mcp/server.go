package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/validate"
)

// GridURI names the resource describing the sampling grid.
const GridURI = "quiver://grid"

// Engine is the part of quiver.Engine exposed to agents.
type Engine interface {
	Grid() domain.Grid
	Validate(text string) (validate.Text, error)
	BuildField(ctx context.Context, text string, opts ...quiver.BuildOption) (*domain.VectorField, error)
}

var _ Engine = (*quiver.Engine)(nil)

// FieldArgs are the arguments of direction_field.
type FieldArgs struct {
	Equation string `mapstructure:"equation"`
	Scaling  string `mapstructure:"scaling"`
}

// FieldResponse is the structured result of direction_field.
type FieldResponse struct {
	Expression string          `json:"expression" jsonschema_description:"Canonical form of dy/dx"`
	LaTeX      string          `json:"latex" jsonschema_description:"LaTeX form of dy/dx"`
	Caption    string          `json:"caption"`
	Scaling    string          `json:"scaling"`
	Points     int             `json:"points" jsonschema_description:"Number of grid points"`
	Degenerate int             `json:"degenerate" jsonschema_description:"Points without a reliable direction"`
	Samples    []domain.Sample `json:"samples"`
}

// VerdictResponse is the structured result of validate_equation.
type VerdictResponse struct {
	Equation string `json:"equation"`
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
}

// Server exposes an Engine as an MCP server.
type Server struct {
	engine    Engine
	maxInput  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize bounds the equation argument in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("quiver-mcp", strings.TrimSpace(quiver.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	scalings := make([]string, len(field.Scalings))
	for i, sc := range field.Scalings {
		scalings[i] = string(sc)
	}

	fieldTool := mcp.NewTool("direction_field",
		mcp.WithDescription("Compute the direction field of dy/dx = f(x, y) over the configured grid."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Right-hand side f(x, y), e.g. 'x*y - sin(x)'")),
		mcp.WithString("scaling", mcp.Enum(scalings...), mcp.Description("Vector scaling (optional)")),
		mcp.WithOutputSchema[FieldResponse](),
	)
	s.mcpServer.AddTool(fieldTool, mcp.NewStructuredToolHandler(s.handleField))

	validateTool := mcp.NewTool("validate_equation",
		mcp.WithDescription("Check an equation against the input allow-list without compiling it."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Right-hand side f(x, y)")),
		mcp.WithOutputSchema[VerdictResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))
}

func (s *Server) handleField(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (FieldResponse, error) {
	var in FieldArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return FieldResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	var opts []quiver.BuildOption
	if in.Scaling != "" {
		sc, err := field.ParseScaling(in.Scaling)
		if err != nil {
			return FieldResponse{}, err
		}
		opts = append(opts, quiver.Scaled(sc))
	}

	text, err := validate.Sanitize(in.Equation, s.maxInput)
	if err != nil {
		s.logger.Warn("MCP direction_field: input rejected", "error", err, "size", len(in.Equation))
		return FieldResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	f, err := s.engine.BuildField(ctx, text, opts...)
	if err != nil {
		return FieldResponse{}, describe(err)
	}
	return FieldResponse{
		Expression: f.Expression,
		LaTeX:      f.LaTeX,
		Caption:    f.Caption,
		Scaling:    f.Scaling,
		Points:     f.Len(),
		Degenerate: f.Degenerate(),
		Samples:    f.Samples,
	}, nil
}

func (s *Server) handleValidate(_ context.Context, _ mcp.CallToolRequest, args map[string]any) (VerdictResponse, error) {
	var in FieldArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return VerdictResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	text, err := validate.Sanitize(in.Equation, s.maxInput)
	if err != nil {
		return VerdictResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	v := VerdictResponse{Equation: text, Valid: true}
	if _, err := s.engine.Validate(text); err != nil {
		v.Valid = false
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			v.Reason = invalid.Reason
		} else {
			v.Reason = err.Error()
		}
	}
	return v, nil
}

// describe turns a BuildField failure into a message an agent can act on.
func describe(err error) error {
	var syntax *domain.SyntaxError
	switch {
	case errors.As(err, &syntax):
		return fmt.Errorf("syntax error at offset %d: %s", syntax.Pos, syntax.Msg)
	case errors.Is(err, domain.ErrInvalidInput):
		return err
	case errors.Is(err, domain.ErrNoResult):
		return fmt.Errorf("equation could not be compiled in time: %w", err)
	}
	return fmt.Errorf("build failed: %w", err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GridURI, "Sampling grid",
		mcp.WithResourceDescription("X and Y coordinates every field is sampled at"),
		mcp.WithMIMEType("application/json"),
	), s.readGrid)
}

func (s *Server) readGrid(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Grid())
	if err != nil {
		return nil, fmt.Errorf("failed to encode grid: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GridURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
