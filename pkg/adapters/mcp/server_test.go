package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/compiler"
	"github.com/aretw0/quiver/pkg/domain"
)

type inProcess struct{}

func (inProcess) Run(_ context.Context, req domain.CompileRequest, _ time.Duration) (*domain.CompileReply, error) {
	reply := compiler.Handle(req)
	return &reply, nil
}

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	g, err := domain.NewGrid([]float64{-1, 0, 1}, []float64{0, 1})
	require.NoError(t, err)
	eng, err := quiver.New(quiver.WithSandbox(inProcess{}), quiver.WithGrid(g))
	require.NoError(t, err)
	return NewServer(eng, opts...)
}

func TestDirectionField(t *testing.T) {
	s := newServer(t)

	res, err := s.handleField(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"equation": "x*y",
		"scaling":  "unit",
	})
	require.NoError(t, err)
	assert.Equal(t, "x*y", res.Expression)
	assert.Equal(t, "x y", res.LaTeX)
	assert.Equal(t, "unit", res.Scaling)
	assert.Equal(t, 6, res.Points)
	assert.Zero(t, res.Degenerate)
	require.Len(t, res.Samples, 6)
	assert.Equal(t, domain.Point{X: -1, Y: 0}, res.Samples[0].Point)
}

func TestDirectionField_Errors(t *testing.T) {
	s := newServer(t, WithMaxInputSize(16))
	ctx := context.Background()

	_, err := s.handleField(ctx, mcp.CallToolRequest{}, map[string]any{"equation": "x***y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error at offset 3")

	_, err = s.handleField(ctx, mcp.CallToolRequest{}, map[string]any{"equation": "open('f')"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.handleField(ctx, mcp.CallToolRequest{}, map[string]any{"equation": "x", "scaling": "cubic"})
	assert.ErrorContains(t, err, "unknown scaling")

	_, err = s.handleField(ctx, mcp.CallToolRequest{}, map[string]any{"equation": "x + x + x + x + x + x"})
	assert.ErrorContains(t, err, "input rejected")

	_, err = s.handleField(ctx, mcp.CallToolRequest{}, map[string]any{"equation": 42})
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestValidateEquation(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	v, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]any{"equation": " sin(x) + y "})
	require.NoError(t, err)
	assert.Equal(t, VerdictResponse{Equation: "sin(x) + y", Valid: true}, v)

	v, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]any{"equation": "xy"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "separated by an operator")
}

func TestGridResource(t *testing.T) {
	s := newServer(t)

	contents, err := s.readGrid(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GridURI, text.URI)

	var g domain.Grid
	require.NoError(t, json.Unmarshal([]byte(text.Text), &g))
	assert.Equal(t, []float64{-1, 0, 1}, g.XRange)
	assert.Equal(t, []float64{0, 1}, g.YRange)
}

func TestToolsAreListed(t *testing.T) {
	s := newServer(t)

	msg := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`,
	))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"direction_field"`)
	assert.Contains(t, string(data), `"validate_equation"`)
}
