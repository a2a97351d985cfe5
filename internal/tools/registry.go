// ABOUTME: Registry mapping tool names to executable handlers
// ABOUTME: Constructed once at wiring time and injected where needed

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrToolNotFound indicates the named tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Handler executes one tool invocation on behalf of an owner. The input is
// the JSON argument bag; the returned payload is a handler envelope.
type Handler func(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error)

// Definition describes a tool to callers and to the remote model.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema string `json:"input_schema"`
}

// Tool pairs a definition with its handler.
type Tool struct {
	Definition *Definition
	Handler    Handler
}

// Envelope is the uniform handler result wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SuccessEnvelope marshals v into a success envelope.
func SuccessEnvelope(v any) (json.RawMessage, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return json.Marshal(Envelope{Success: true, Result: result})
}

// ErrorEnvelope builds a failure envelope carrying a client-facing message.
func ErrorEnvelope(msg string) json.RawMessage {
	out, _ := json.Marshal(Envelope{Success: false, Error: msg})
	return out
}

// Registry maintains the set of registered tools.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: slog.Default().With("component", "tools"),
	}
}

// Register adds a tool to the registry. Returns an error on name collision.
func (r *Registry) Register(tool *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Definition.Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.logger.Debug("registered tool", "name", name)
	return nil
}

// Get returns the named tool or ErrToolNotFound.
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// Has reports whether the named tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Definitions returns all registered tool definitions, for the /tools
// listing and the remote-model schema.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition)
	}
	return defs
}
