// ABOUTME: Conversation orchestrator running one chatbot turn at a time
// ABOUTME: Ensures ownership, persists turns, dispatches at most one tool call

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/taskline/taskline/internal/dispatch"
	"github.com/taskline/taskline/internal/interpreter"
	"github.com/taskline/taskline/internal/store"
	"github.com/taskline/taskline/internal/tools"
)

// ErrForeignConversation indicates the conversation exists but belongs to
// another user.
var ErrForeignConversation = errors.New("conversation belongs to another user")

// TurnResult is the outcome of one processed chat turn.
type TurnResult struct {
	ConversationID string                 `json:"conversation_id"`
	Response       string                 `json:"response"`
	ToolCalls      []interpreter.ToolCall `json:"tool_calls"`
	ToolResponses  []*dispatch.Result     `json:"tool_responses"`
	ErrorOccurred  bool                   `json:"error_occurred"`
}

// Service orchestrates chat turns.
type Service struct {
	store      store.Store
	interp     interpreter.Interpreter
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	// Per-conversation turn serialization
	turnMu sync.Mutex
	turns  map[string]*sync.Mutex
}

// NewService creates a chat service.
func NewService(s store.Store, interp interpreter.Interpreter, dispatcher *dispatch.Dispatcher) *Service {
	return &Service{
		store:      s,
		interp:     interp,
		dispatcher: dispatcher,
		logger:     slog.Default().With("component", "chat"),
		turns:      make(map[string]*sync.Mutex),
	}
}

// turnLock returns the mutex serializing turns for one conversation.
func (s *Service) turnLock(conversationID string) *sync.Mutex {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	mu, ok := s.turns[conversationID]
	if !ok {
		mu = &sync.Mutex{}
		s.turns[conversationID] = mu
	}
	return mu
}

// ProcessTurn runs one turn: ensure the conversation, persist the user
// message, interpret, dispatch, and persist the assistant message. The
// assistant append is attempted even when an upstream step failed so the
// conversation history stays complete.
//
// Returns store.ErrNotFound when conversationID names a missing
// conversation and ErrForeignConversation when it belongs to another user.
func (s *Service) ProcessTurn(ctx context.Context, ownerID, conversationID, message string) (*TurnResult, error) {
	conv, err := s.ensureConversation(ctx, ownerID, conversationID)
	if err != nil {
		return nil, err
	}

	mu := s.turnLock(conv.ID)
	mu.Lock()
	defer mu.Unlock()

	// History is read before this turn's user message lands
	history, err := s.priorTurns(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	if err := s.store.AppendMessage(ctx, &store.Message{
		ConversationID: conv.ID,
		Sender:         store.SenderUser,
		Content:        message,
	}); err != nil {
		return nil, fmt.Errorf("persisting user message: %w", err)
	}

	interp, err := s.interp.Interpret(ctx, message, history)
	if err != nil {
		// Interpreters are expected to absorb their own failures
		s.logger.Error("interpreter failed", "error", err)
		interp = &interpreter.Result{Reply: "Sorry, I encountered an error processing your request. Please try again."}
	}

	turn := &TurnResult{
		ConversationID: conv.ID,
		Response:       interp.Reply,
		ToolCalls:      interp.ToolCalls,
		ToolResponses:  []*dispatch.Result{},
	}

	if len(interp.ToolCalls) > 0 {
		s.dispatchCall(ctx, ownerID, interp.ToolCalls[0], turn)
	}

	s.appendAssistantMessage(ctx, turn)
	return turn, nil
}

// GetConversation returns an owned conversation with its ordered messages.
func (s *Service) GetConversation(ctx context.Context, ownerID, conversationID string) (*store.Conversation, []*store.Message, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv.UserID != ownerID {
		return nil, nil, ErrForeignConversation
	}
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

func (s *Service) ensureConversation(ctx context.Context, ownerID, conversationID string) (*store.Conversation, error) {
	if conversationID == "" {
		conv := &store.Conversation{UserID: ownerID}
		if err := s.store.CreateConversation(ctx, conv); err != nil {
			return nil, fmt.Errorf("creating conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != ownerID {
		return nil, ErrForeignConversation
	}
	return conv, nil
}

func (s *Service) priorTurns(ctx context.Context, conversationID string) ([]interpreter.Message, error) {
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	history := make([]interpreter.Message, len(msgs))
	for i, m := range msgs {
		history[i] = interpreter.Message{Role: m.Sender, Content: m.Content}
	}
	return history, nil
}

// dispatchCall executes one tool call and folds the outcome into the turn.
// Any dispatch error short-circuits to an apology reply with the error
// flag set; a successful list result regenerates the reply from the
// structured collection.
func (s *Service) dispatchCall(ctx context.Context, ownerID string, call interpreter.ToolCall, turn *TurnResult) {
	res, err := s.dispatcher.Execute(ctx, ownerID, call.Name, call.Arguments)
	if err != nil {
		turn.Response = apology(dispatchErrorMessage(err))
		turn.ErrorOccurred = true
		return
	}

	turn.ToolResponses = append(turn.ToolResponses, res)

	if !res.Success {
		turn.Response = apology(res.Error)
		turn.ErrorOccurred = true
		return
	}

	if call.Name == tools.ToolListTasks {
		var list tools.ListResult
		if err := json.Unmarshal(res.Result, &list); err != nil {
			s.logger.Error("malformed list result", "error", err)
			turn.Response = "I couldn't retrieve your tasks. Please try again."
			turn.ErrorOccurred = true
			return
		}
		turn.Response = renderTaskList(list.Tasks)
	}
}

// dispatchErrorMessage maps dispatch failures to user-readable text,
// never a raw error chain.
func dispatchErrorMessage(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrConnectivity):
		return "the task service is unreachable"
	case errors.Is(err, tools.ErrToolNotFound):
		return "that operation is not available"
	default:
		return "an internal error occurred"
	}
}

func apology(msg string) string {
	return fmt.Sprintf("Sorry, I encountered an error processing your request: %s. Please try again.", msg)
}

// appendAssistantMessage persists the assistant turn with its tool
// metadata. Failures are logged, not propagated: the user already has a
// response, and partial persistence is an accepted limitation.
func (s *Service) appendAssistantMessage(ctx context.Context, turn *TurnResult) {
	msg := &store.Message{
		ConversationID: turn.ConversationID,
		Sender:         store.SenderAssistant,
		Content:        turn.Response,
	}
	if len(turn.ToolCalls) > 0 {
		msg.ToolCalls, _ = json.Marshal(turn.ToolCalls)
	}
	if len(turn.ToolResponses) > 0 {
		msg.ToolResults, _ = json.Marshal(turn.ToolResponses)
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		s.logger.Error("failed to persist assistant message",
			"conversation_id", turn.ConversationID, "error", err)
	}
}
