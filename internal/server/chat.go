// ABOUTME: Chat turn and conversation retrieval endpoints
// ABOUTME: Turn processing delegates to the chat service; errors map to statuses

package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/store"
)

// ChatRequest is the JSON request body for POST /api/{ownerId}/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// MessageResponse is one turn in a conversation history.
type MessageResponse struct {
	ID          string          `json:"id"`
	Sender      string          `json:"sender"`
	Content     string          `json:"content"`
	ToolCalls   json.RawMessage `json:"tool_calls,omitempty"`
	ToolResults json.RawMessage `json:"tool_results,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// ConversationResponse is the full history of one conversation.
type ConversationResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Messages  []MessageResponse `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.sendJSONError(w, http.StatusUnprocessableEntity, "message cannot be empty")
		return
	}

	turn, err := s.chat.ProcessTurn(r.Context(), ownerID, req.ConversationID, req.Message)
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, turn)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())

	conv, msgs, err := s.chat.GetConversation(r.Context(), ownerID, r.PathValue("conversationId"))
	if err != nil {
		s.sendMappedError(w, err)
		return
	}

	resp := ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		Messages:  make([]MessageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, messageResponse(m))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func messageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		Sender:      m.Sender,
		Content:     m.Content,
		ToolCalls:   m.ToolCalls,
		ToolResults: m.ToolResults,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
	}
}
