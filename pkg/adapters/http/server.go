// Package http exposes a schema registry and its dispatchers over HTTP.
//
// Schemas are uploaded as YAML documents and addressed by name. Validation
// and normalization answer with 204/200 on success and 422 with the
// structured failure report on invalid input.
package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/schemafile"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// Registry is a named schema store safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]typegraph.Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]typegraph.Node)}
}

// Put registers or replaces a named schema.
func (r *Registry) Put(name string, g typegraph.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = g
}

// Get looks up a named schema.
func (r *Registry) Get(name string) (typegraph.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.schemas[name]
	return g, ok
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Server serves the registry.
type Server struct {
	registry  *Registry
	logger    *slog.Logger
	validate  *dispatch.GraphDispatcher
	undictify *dispatch.GraphDispatcher
	dictify   *dispatch.GraphDispatcher
}

// Option adjusts the server.
type Option func(*Server)

// WithDispatchers swaps the default dispatcher stack, e.g. for instances
// carrying an observation hook.
func WithDispatchers(validate, undictify, dictify *dispatch.GraphDispatcher) Option {
	return func(s *Server) {
		s.validate = validate
		s.undictify = undictify
		s.dictify = dictify
	}
}

// NewHandler builds the HTTP handler over a registry. A nil logger
// discards logs.
func NewHandler(reg *Registry, logger *slog.Logger, opts ...Option) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		registry:  reg,
		logger:    logger,
		validate:  lattice.Validate,
		undictify: lattice.Undictify,
		dictify:   lattice.Dictify,
	}
	for _, opt := range opts {
		opt(s)
	}
	r := chi.NewRouter()
	r.Get("/schemas", s.listSchemas)
	r.Put("/schemas/{name}", s.putSchema)
	r.Get("/schemas/{name}/graph", s.getGraph)
	r.Post("/schemas/{name}/validate", s.handleValidate)
	r.Post("/schemas/{name}/normalize", s.handleNormalize)
	return r
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"schemas": s.registry.Names()})
}

func (s *Server) putSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	g, err := schemafile.Parse(body)
	if err != nil {
		s.logger.Warn("schema rejected", "name", name, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	s.registry.Put(name, g)
	s.logger.Info("schema registered", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, typegraph.Render(g, false))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	if _, err := s.validate.Call(g, value); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNormalize deserializes the payload against the schema and
// serializes it back, yielding the canonical wire form.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}
	loaded, err := s.undictify.Call(g, value)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	out, err := s.dictify.Call(g, loaded)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (typegraph.Node, bool) {
	name := chi.URLParam(r, "name")
	g, ok := s.registry.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown schema: " + name})
		return typegraph.Node{}, false
	}
	return g, true
}

// respondFailure maps a structured value failure to 422 and anything else
// to 500.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	if inv, ok := invalid.As(err); ok {
		s.logger.Info("value rejected", "path", r.URL.Path)
		writeJSON(w, http.StatusUnprocessableEntity, inv)
		return
	}
	s.logger.Error("dispatch failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func decodeValue(w http.ResponseWriter, r *http.Request) (any, bool) {
	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return nil, false
	}
	return value, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}
