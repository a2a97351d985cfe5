// ABOUTME: HTTP server wiring routes, auth middleware, and the tool surface
// ABOUTME: Owner-scoped routes require a token matching the path owner

package server

import (
	"log/slog"
	"net/http"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/chat"
	"github.com/taskline/taskline/internal/identity"
	"github.com/taskline/taskline/internal/store"
	"github.com/taskline/taskline/internal/tools"
)

// Server holds the REST API's collaborators.
type Server struct {
	store    store.Store
	identity *identity.Service
	chat     *chat.Service
	verifier *auth.JWTVerifier
	tools    *tools.Server
	logger   *slog.Logger
}

// New creates the API server. toolServer may be nil when tool execution
// is deployed separately.
func New(s store.Store, ident *identity.Service, chatSvc *chat.Service, verifier *auth.JWTVerifier, toolServer *tools.Server) *Server {
	return &Server{
		store:    s,
		identity: ident,
		chat:     chatSvc,
		verifier: verifier,
		tools:    toolServer,
		logger:   slog.Default().With("component", "server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	// Owner-scoped routes: valid token, subject must equal {ownerId}
	authed := auth.Middleware(s.verifier)
	owned := auth.RequireOwner()
	protect := func(h http.HandlerFunc) http.Handler {
		return authed(owned(h))
	}

	mux.Handle("POST /api/{ownerId}/chat", protect(s.handleChat))
	mux.Handle("GET /api/{ownerId}/conversations/{conversationId}", protect(s.handleGetConversation))

	mux.Handle("POST /api/{ownerId}/tasks", protect(s.handleCreateTask))
	mux.Handle("GET /api/{ownerId}/tasks", protect(s.handleListTasks))
	mux.Handle("GET /api/{ownerId}/tasks/{taskId}", protect(s.handleGetTask))
	mux.Handle("PUT /api/{ownerId}/tasks/{taskId}", protect(s.handleUpdateTask))
	mux.Handle("DELETE /api/{ownerId}/tasks/{taskId}", protect(s.handleDeleteTask))
	mux.Handle("PATCH /api/{ownerId}/tasks/{taskId}/complete", protect(s.handleToggleComplete))

	if s.tools != nil {
		s.tools.Routes(mux)
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
