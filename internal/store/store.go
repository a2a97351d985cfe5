// ABOUTME: Store interface and data types for taskline persistence
// ABOUTME: Defines User, Task, Conversation, Message structs and the Store interface

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
// or is not owned by the requesting user.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user whose email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Priority values for tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Sender values for messages.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Task represents a user's todo item.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	Priority    string // low, medium, high
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Conversation represents a chat thread between a user and the assistant.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents a single turn within a conversation. Messages are
// append-only: once saved they are never mutated, and they are removed
// only by cascading conversation deletion.
type Message struct {
	ID             string
	ConversationID string
	Sender         string // "user", "assistant", "system"
	Content        string
	ToolCalls      json.RawMessage // nil when the turn invoked no tools
	ToolResults    json.RawMessage
	CreatedAt      time.Time
}

// Store defines the interface for taskline persistence.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Tasks (owner-scoped)
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, ownerID, id string) (*Task, error)
	ListTasks(ctx context.Context, ownerID, status string) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, ownerID, id string) error

	// Conversations
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, ownerID string) ([]*Conversation, error)
	DeleteConversation(ctx context.Context, ownerID, id string) error

	// Messages (append-only audit trail)
	AppendMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}
