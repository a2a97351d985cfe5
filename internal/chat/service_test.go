// ABOUTME: Tests for the chat turn orchestrator
// ABOUTME: Full stack with real SQLite, rule interpreter, and local dispatch

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/dispatch"
	"github.com/taskline/taskline/internal/interpreter"
	"github.com/taskline/taskline/internal/store"
	"github.com/taskline/taskline/internal/tools"
)

func newTestChat(t *testing.T) (*Service, store.Store, string) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	owner := &store.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), owner))

	registry := tools.NewRegistry()
	for _, tool := range tools.TaskTools(s) {
		require.NoError(t, registry.Register(tool))
	}

	svc := NewService(s, interpreter.NewRules(), dispatch.NewLocal(registry))
	return svc, s, owner.ID
}

func TestProcessTurn_AddTask(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	turn, err := svc.ProcessTurn(ctx, owner, "", "Add a task to buy milk")
	require.NoError(t, err)

	assert.NotEmpty(t, turn.ConversationID)
	assert.Contains(t, turn.Response, "buy milk")
	assert.False(t, turn.ErrorOccurred)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "add_task", turn.ToolCalls[0].Name)
	require.Len(t, turn.ToolResponses, 1)
	assert.True(t, turn.ToolResponses[0].Success)

	// The task really landed in the store.
	tasks, err := s.ListTasks(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
}

func TestProcessTurn_PersistsBothMessages(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	turn, err := svc.ProcessTurn(ctx, owner, "", "Add a task to buy milk")
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, turn.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, store.SenderUser, msgs[0].Sender)
	assert.Equal(t, "Add a task to buy milk", msgs[0].Content)
	assert.Equal(t, store.SenderAssistant, msgs[1].Sender)
	assert.Equal(t, turn.Response, msgs[1].Content)
	assert.NotNil(t, msgs[1].ToolCalls)
	assert.NotNil(t, msgs[1].ToolResults)
}

func TestProcessTurn_EmptyListState(t *testing.T) {
	svc, _, owner := newTestChat(t)

	turn, err := svc.ProcessTurn(context.Background(), owner, "", "Show me my tasks")
	require.NoError(t, err)

	// Exactly the empty-state message, not an empty enumeration.
	assert.Equal(t, "You don't have any tasks.", turn.Response)
	assert.False(t, turn.ErrorOccurred)
}

func TestProcessTurn_ListRendering(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	first := &store.Task{UserID: owner, Title: "walk dog", Completed: true, CreatedAt: base}
	second := &store.Task{UserID: owner, Title: "buy milk", Description: "two liters", Priority: store.PriorityHigh, CreatedAt: base.Add(time.Second)}
	require.NoError(t, s.CreateTask(ctx, first))
	require.NoError(t, s.CreateTask(ctx, second))

	turn, err := svc.ProcessTurn(ctx, owner, "", "list my tasks")
	require.NoError(t, err)

	assert.Contains(t, turn.Response, "1. [X] walk dog (ID: "+first.ID+")")
	assert.Contains(t, turn.Response, "2. [ ] buy milk (ID: "+second.ID+")")
	assert.Contains(t, turn.Response, "Description: two liters")
	assert.Contains(t, turn.Response, "Priority: high")
}

func TestProcessTurn_NonCanonicalID(t *testing.T) {
	svc, _, owner := newTestChat(t)

	turn, err := svc.ProcessTurn(context.Background(), owner, "", "Complete task 123")
	require.NoError(t, err)

	assert.Empty(t, turn.ToolCalls)
	assert.Contains(t, turn.Response, "list your tasks first")
	assert.False(t, turn.ErrorOccurred)
}

func TestProcessTurn_ToolErrorApology(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	turn, err := svc.ProcessTurn(ctx, owner, "", "delete task 11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)

	assert.True(t, turn.ErrorOccurred)
	assert.Contains(t, turn.Response, "Sorry, I encountered an error")
	assert.Contains(t, turn.Response, "task not found")

	// The assistant message is appended even on error.
	msgs, err := s.ListMessages(ctx, turn.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, turn.Response, msgs[1].Content)
}

func TestProcessTurn_ConnectivityApology(t *testing.T) {
	_, s, owner := newTestChat(t)

	// A dispatcher pointed at a dead endpoint produces the apology path.
	svc := NewService(s, interpreter.NewRules(), dispatch.NewRemote("http://127.0.0.1:1", time.Second))

	turn, err := svc.ProcessTurn(context.Background(), owner, "", "Show me my tasks")
	require.NoError(t, err)
	assert.True(t, turn.ErrorOccurred)
	assert.Contains(t, turn.Response, "unreachable")
}

func TestProcessTurn_ExistingConversation(t *testing.T) {
	svc, _, owner := newTestChat(t)
	ctx := context.Background()

	first, err := svc.ProcessTurn(ctx, owner, "", "Add a task to buy milk")
	require.NoError(t, err)

	second, err := svc.ProcessTurn(ctx, owner, first.ConversationID, "Show me my tasks")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Contains(t, second.Response, "buy milk")
}

func TestProcessTurn_MissingConversation(t *testing.T) {
	svc, _, owner := newTestChat(t)

	_, err := svc.ProcessTurn(context.Background(), owner, "no-such-conversation", "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcessTurn_ForeignConversation(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	other := &store.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, other))
	conv := &store.Conversation{UserID: other.ID}
	require.NoError(t, s.CreateConversation(ctx, conv))

	_, err := svc.ProcessTurn(ctx, owner, conv.ID, "hello")
	assert.ErrorIs(t, err, ErrForeignConversation)
}

func TestGetConversation(t *testing.T) {
	svc, _, owner := newTestChat(t)
	ctx := context.Background()

	turn, err := svc.ProcessTurn(ctx, owner, "", "Add a task to buy milk")
	require.NoError(t, err)

	conv, msgs, err := svc.GetConversation(ctx, owner, turn.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, owner, conv.UserID)
	assert.Len(t, msgs, 2)
}

func TestGetConversation_Foreign(t *testing.T) {
	svc, s, owner := newTestChat(t)
	ctx := context.Background()

	other := &store.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, other))
	conv := &store.Conversation{UserID: other.ID}
	require.NoError(t, s.CreateConversation(ctx, conv))

	_, _, err := svc.GetConversation(ctx, owner, conv.ID)
	if !errors.Is(err, ErrForeignConversation) {
		t.Errorf("expected ErrForeignConversation, got %v", err)
	}
}

func TestRenderTaskList_Empty(t *testing.T) {
	if got := renderTaskList(nil); got != "You don't have any tasks." {
		t.Errorf("empty render = %q", got)
	}
}

func TestRenderTaskList_OmitsBlankDescription(t *testing.T) {
	out := renderTaskList([]tools.TaskView{{ID: "id-1", Title: "t", Priority: "medium"}})
	if strings.Contains(out, "Description:") {
		t.Errorf("blank description rendered: %q", out)
	}
	if !strings.Contains(out, "Priority: medium") {
		t.Errorf("priority line missing: %q", out)
	}
}
