// ABOUTME: Registration and login endpoints
// ABOUTME: Both respond with the user representation and a bearer token

package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskline/taskline/internal/store"
)

// RegisterRequest is the JSON request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public user representation.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse is the JSON response for register and login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.identity.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, AuthResponse{User: userResponse(user), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, AuthResponse{User: userResponse(user), Token: token})
}
