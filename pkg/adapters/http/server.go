package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/field"
	"github.com/aretw0/quiver/pkg/schema"
	"github.com/aretw0/quiver/pkg/validate"
)

// Engine is the part of quiver.Engine the HTTP surface needs.
type Engine interface {
	Validate(text string) (validate.Text, error)
	BuildField(ctx context.Context, text string, opts ...quiver.BuildOption) (*domain.VectorField, error)
}

var _ Engine = (*quiver.Engine)(nil)

// Error kinds reported in error documents.
const (
	KindBadRequest   = "bad_request"
	KindInvalidInput = "invalid_input"
	KindSyntax       = "syntax"
	KindNoResult     = "no_result"
	KindSandbox      = "sandbox"
	KindInternal     = "internal"
)

// ErrorDocument is the JSON body of every non-2xx response.
type ErrorDocument struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Pos     *int   `json:"pos,omitempty"`
}

// Verdict is the body of GET /validate.
type Verdict struct {
	Equation string `json:"equation"`
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
}

// Server implements ServerInterface on top of an Engine.
type Server struct {
	engine   Engine
	metrics  http.Handler
	maxInput int
	logger   *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxInputSize bounds the equation parameter in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.logger.Error("failed to load OpenAPI spec", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return HandlerFromMux(s, r, func(w http.ResponseWriter, _ *http.Request, err error) {
		s.writeError(w, http.StatusBadRequest, ErrorDocument{Kind: KindBadRequest, Message: err.Error()})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "quiver-http",
		"version":     strings.TrimSpace(quiver.Version),
		"api_version": apiVersion,
	})
}

// GetValidate handles GET /validate.
func (s *Server) GetValidate(w http.ResponseWriter, r *http.Request, params EquationParams) {
	text, err := validate.Sanitize(params.Equation, s.maxInput)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorDocument{Kind: KindBadRequest, Message: err.Error()})
		return
	}
	v := Verdict{Equation: text, Valid: true}
	if _, err := s.engine.Validate(text); err != nil {
		v.Valid = false
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			v.Reason = invalid.Reason
		} else {
			v.Reason = err.Error()
		}
	}
	s.writeJSON(w, http.StatusOK, v)
}

// GetField handles GET /field.
func (s *Server) GetField(w http.ResponseWriter, r *http.Request, params FieldParams) {
	var opts []quiver.BuildOption
	if params.Scaling != nil {
		sc, err := field.ParseScaling(*params.Scaling)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, ErrorDocument{Kind: KindBadRequest, Message: err.Error()})
			return
		}
		opts = append(opts, quiver.Scaled(sc))
	}

	text, err := validate.Sanitize(params.Equation, s.maxInput)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrorDocument{Kind: KindBadRequest, Message: err.Error()})
		return
	}
	f, err := s.engine.BuildField(r.Context(), text, opts...)
	if err != nil {
		status, doc := classify(err)
		s.logger.Info("no field", "equation", text, "kind", doc.Kind, "error", err)
		s.writeError(w, status, doc)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

// GetData handles GET /data. It answers with an empty body when no field
// can be built.
func (s *Server) GetData(w http.ResponseWriter, r *http.Request, params EquationParams) {
	text, err := validate.Sanitize(params.Equation, s.maxInput)
	if err != nil {
		s.logger.Info("equation rejected", "error", err, "size", len(params.Equation))
		w.WriteHeader(http.StatusOK)
		return
	}
	f, err := s.engine.BuildField(r.Context(), text)
	if err != nil {
		s.logger.Info("no field", "equation", text, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	s.writeJSON(w, http.StatusOK, DataDocument(f))
}

// GetSchema handles GET /schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	data, err := schema.FieldJSON()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrorDocument{Kind: KindInternal, Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(data)
}

// DataDocument maps "x,y" to [dx, dy].
func DataDocument(f *domain.VectorField) map[string][2]float64 {
	out := make(map[string][2]float64, f.Len())
	for _, s := range f.Samples {
		key := strconv.FormatFloat(s.X, 'g', -1, 64) + "," + strconv.FormatFloat(s.Y, 'g', -1, 64)
		out[key] = [2]float64{s.DX, s.DY}
	}
	return out
}

func classify(err error) (int, ErrorDocument) {
	doc := ErrorDocument{Message: err.Error()}
	var syntax *domain.SyntaxError
	switch {
	case errors.As(err, &syntax):
		doc.Kind = KindSyntax
		doc.Pos = &syntax.Pos
		return http.StatusUnprocessableEntity, doc
	case errors.Is(err, domain.ErrInvalidInput):
		doc.Kind = KindInvalidInput
		return http.StatusUnprocessableEntity, doc
	case errors.Is(err, domain.ErrNoResult):
		doc.Kind = KindNoResult
		return http.StatusUnprocessableEntity, doc
	case errors.Is(err, domain.ErrSandbox):
		doc.Kind = KindSandbox
		return http.StatusServiceUnavailable, doc
	case errors.Is(err, context.Canceled):
		doc.Kind = KindNoResult
		return http.StatusServiceUnavailable, doc
	}
	doc.Kind = KindInternal
	return http.StatusInternalServerError, doc
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, doc ErrorDocument) {
	s.writeJSON(w, status, doc)
}
