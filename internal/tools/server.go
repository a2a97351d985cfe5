// ABOUTME: HTTP execution surface for the tool registry
// ABOUTME: POST /execute runs a named tool; GET /tools lists definitions

package tools

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Server exposes a Registry over HTTP so tool execution can be deployed
// separately from the chat service.
type Server struct {
	registry *Registry
	logger   *slog.Logger
}

// NewServer creates a tool server for the given registry.
func NewServer(registry *Registry) *Server {
	return &Server{
		registry: registry,
		logger:   slog.Default().With("component", "tool-server"),
	}
}

// Routes registers the tool endpoints on the given mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("GET /tools", s.handleListTools)
}

// ExecuteRequest is the wire format of POST /execute.
type ExecuteRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleExecute runs one tool call. The acting owner is carried in the
// argument bag as user_id, placed there by the dispatcher. Handler-level
// failures ride inside the envelope; only transport-level problems
// (unknown tool, malformed request) map to HTTP error codes.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeEnvelope(w, http.StatusBadRequest, Envelope{Success: false, Error: "invalid request body"})
		return
	}

	tool, err := s.registry.Get(req.Name)
	if err != nil {
		s.writeEnvelope(w, http.StatusNotFound, Envelope{Success: false, Error: "unknown tool: " + req.Name})
		return
	}

	var bag struct {
		UserID string `json:"user_id"`
	}
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &bag); err != nil {
			s.writeEnvelope(w, http.StatusBadRequest, Envelope{Success: false, Error: "invalid arguments"})
			return
		}
	}
	if bag.UserID == "" {
		s.writeEnvelope(w, http.StatusBadRequest, Envelope{Success: false, Error: "missing user_id"})
		return
	}

	inner, err := tool.Handler(r.Context(), bag.UserID, req.Arguments)
	if err != nil {
		s.logger.Error("tool handler failed", "tool", req.Name, "error", err)
		inner = ErrorEnvelope("internal error processing tool request")
	}

	s.writeEnvelope(w, http.StatusOK, Envelope{Success: true, Result: inner})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"tools": names})
}

func (s *Server) writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
