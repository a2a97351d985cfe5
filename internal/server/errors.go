// ABOUTME: JSON response helpers and error-to-status mapping
// ABOUTME: Clients get structured errors, never stack traces

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskline/taskline/internal/chat"
	"github.com/taskline/taskline/internal/identity"
	"github.com/taskline/taskline/internal/store"
)

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

// sendMappedError translates service-layer errors into HTTP statuses:
// 404 for missing/foreign-owned entities, 403 for foreign conversations,
// 409 for duplicate email, 422 for validation failures, 401 for bad
// credentials, 500 otherwise.
func (s *Server) sendMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, chat.ErrForeignConversation):
		s.sendJSONError(w, http.StatusForbidden, "conversation belongs to another user")
	case errors.Is(err, store.ErrDuplicateEmail):
		s.sendJSONError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, identity.ErrInvalidCredentials):
		s.sendJSONError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrPasswordTooShort),
		errors.Is(err, identity.ErrEmptyName):
		s.sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
