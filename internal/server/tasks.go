// ABOUTME: Owner-scoped task CRUD endpoints
// ABOUTME: Validation mirrors the tool layer so both surfaces agree

package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/store"
	"github.com/taskline/taskline/internal/tools"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// TaskRequest is the JSON request body for creating a task.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// TaskUpdateRequest carries a partial update. Absent fields keep
// their stored values.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// TaskResponse is the public task representation.
type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TaskListResponse wraps a task listing with its count.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

func taskResponse(t *store.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func validateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "task title cannot be empty"
	}
	if len(title) > maxTitleLength {
		return "", "task title is too long"
	}
	return title, ""
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title, msg := validateTitle(req.Title)
	if msg != "" {
		s.sendJSONError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if len(req.Description) > maxDescriptionLength {
		s.sendJSONError(w, http.StatusUnprocessableEntity, "task description is too long")
		return
	}

	task := &store.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: req.Description,
		Priority:    tools.CoercePriority(req.Priority),
	}
	if err := s.store.CreateTask(r.Context(), task); err != nil {
		s.sendMappedError(w, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, taskResponse(task))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	status := r.URL.Query().Get("status")
	switch status {
	case "", "pending", "completed":
	default:
		s.sendJSONError(w, http.StatusUnprocessableEntity, "status must be pending or completed")
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), ownerID, status)
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks)), Count: len(tasks)}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskResponse(t))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	task, err := s.store.GetTask(r.Context(), ownerID, r.PathValue("taskId"))
	if err != nil {
		s.sendMappedError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, taskResponse(task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.store.GetTask(r.Context(), ownerID, r.PathValue("taskId"))
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	if req.Title != nil {
		title, msg := validateTitle(*req.Title)
		if msg != "" {
			s.sendJSONError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			s.sendJSONError(w, http.StatusUnprocessableEntity, "task description is too long")
			return
		}
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = tools.CoercePriority(*req.Priority)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		s.sendMappedError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, taskResponse(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	if err := s.store.DeleteTask(r.Context(), ownerID, r.PathValue("taskId")); err != nil {
		s.sendMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleComplete flips the completed flag rather than setting it,
// so repeated PATCHes alternate the state.
func (s *Server) handleToggleComplete(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	task, err := s.store.GetTask(r.Context(), ownerID, r.PathValue("taskId"))
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	task.Completed = !task.Completed
	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		s.sendMappedError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, taskResponse(task))
}
