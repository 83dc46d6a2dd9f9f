package http

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var specYAML []byte

// rawSpec returns the embedded OpenAPI document.
func rawSpec() ([]byte, error) {
	return specYAML, nil
}

// GetSwagger parses the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	data, err := rawSpec()
	if err != nil {
		return nil, err
	}
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("error loading spec: %w", err)
	}
	return doc, nil
}

// EquationParams carries the equation query parameter.
type EquationParams struct {
	Equation string `form:"equation" json:"equation"`
}

// FieldParams are the query parameters of GET /field.
type FieldParams struct {
	Equation string  `form:"equation" json:"equation"`
	Scaling  *string `form:"scaling,omitempty" json:"scaling,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	GetValidate(w http.ResponseWriter, r *http.Request, params EquationParams)
	GetField(w http.ResponseWriter, r *http.Request, params FieldParams)
	GetData(w http.ResponseWriter, r *http.Request, params EquationParams)
	GetSchema(w http.ResponseWriter, r *http.Request)
}

// ParamErrorFunc reports a query parameter that could not be bound.
type ParamErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

type wrapper struct {
	handler ServerInterface
	onError ParamErrorFunc
}

// HandlerFromMux routes every operation onto r.
func HandlerFromMux(si ServerInterface, r chi.Router, onError ParamErrorFunc) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &wrapper{handler: si, onError: onError}
	r.Get("/health", w.handler.GetHealth)
	r.Get("/info", w.handler.GetInfo)
	r.Get("/validate", w.getValidate)
	r.Get("/field", w.getField)
	r.Get("/data", w.getData)
	r.Get("/schema", w.handler.GetSchema)
	return r
}

func (w *wrapper) equation(rw http.ResponseWriter, r *http.Request) (EquationParams, bool) {
	var params EquationParams
	if err := runtime.BindQueryParameter("form", true, true, "equation", r.URL.Query(), &params.Equation); err != nil {
		w.onError(rw, r, fmt.Errorf("invalid format for parameter equation: %w", err))
		return params, false
	}
	return params, true
}

func (w *wrapper) getValidate(rw http.ResponseWriter, r *http.Request) {
	if params, ok := w.equation(rw, r); ok {
		w.handler.GetValidate(rw, r, params)
	}
}

func (w *wrapper) getData(rw http.ResponseWriter, r *http.Request) {
	if params, ok := w.equation(rw, r); ok {
		w.handler.GetData(rw, r, params)
	}
}

func (w *wrapper) getField(rw http.ResponseWriter, r *http.Request) {
	eq, ok := w.equation(rw, r)
	if !ok {
		return
	}
	params := FieldParams{Equation: eq.Equation}
	if err := runtime.BindQueryParameter("form", true, false, "scaling", r.URL.Query(), &params.Scaling); err != nil {
		w.onError(rw, r, fmt.Errorf("invalid format for parameter scaling: %w", err))
		return
	}
	w.handler.GetField(rw, r, params)
}
