// ABOUTME: Tool dispatcher routing named operations to registry handlers
// ABOUTME: Injects the authenticated owner and flattens result envelopes

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskline/taskline/internal/tools"
)

// ErrConnectivity indicates the tool server could not be reached or timed
// out. Callers turn this into a user-facing apology, never a raw 500.
var ErrConnectivity = errors.New("tool server unreachable")

// DefaultTimeout bounds a single HTTP tool call.
const DefaultTimeout = 30 * time.Second

// Result is the flattened outcome of one tool call, with the transport
// and handler envelopes collapsed into a single layer.
type Result struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Dispatcher executes named tools either in-process against a registry or
// remotely over HTTP against a tool server.
type Dispatcher struct {
	registry *tools.Registry
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

// NewLocal creates a dispatcher that executes tools in-process.
func NewLocal(registry *tools.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   slog.Default().With("component", "dispatch"),
	}
}

// NewRemote creates a dispatcher that executes tools over HTTP at
// baseURL/execute. A zero timeout means DefaultTimeout.
func NewRemote(baseURL string, timeout time.Duration) *Dispatcher {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "dispatch"),
	}
}

// Execute runs the named tool for the authenticated owner. The owner ID is
// force-injected into the argument bag; any user_id arriving from free text
// is overwritten and never trusted.
func (d *Dispatcher) Execute(ctx context.Context, ownerID, name string, args json.RawMessage) (*Result, error) {
	injected, err := injectOwner(args, ownerID)
	if err != nil {
		return nil, fmt.Errorf("preparing arguments: %w", err)
	}

	if d.registry != nil {
		return d.executeLocal(ctx, ownerID, name, injected)
	}
	return d.executeRemote(ctx, name, injected)
}

// injectOwner overwrites the user_id key in the argument bag.
func injectOwner(args json.RawMessage, ownerID string) (json.RawMessage, error) {
	bag := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &bag); err != nil {
			return nil, err
		}
	}
	bag["user_id"] = ownerID
	return json.Marshal(bag)
}

func (d *Dispatcher) executeLocal(ctx context.Context, ownerID, name string, args json.RawMessage) (*Result, error) {
	tool, err := d.registry.Get(name)
	if err != nil {
		return nil, err
	}

	raw, err := tool.Handler(ctx, ownerID, args)
	if err != nil {
		d.logger.Error("tool handler failed", "tool", name, "error", err)
		return &Result{Success: false, Error: "internal error processing tool request"}, nil
	}
	return flatten(raw)
}

func (d *Dispatcher) executeRemote(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	body, err := json.Marshal(tools.ExecuteRequest{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("tool server unreachable", "tool", name, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var outer tools.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&outer); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrConnectivity, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", tools.ErrToolNotFound, name)
	}
	if !outer.Success {
		return &Result{Success: false, Error: outer.Error}, nil
	}
	return flatten(outer.Result)
}

// flatten collapses a handler envelope, which may itself wrap a nested
// envelope, into one flat Result.
func flatten(raw json.RawMessage) (*Result, error) {
	var env tools.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed tool envelope: %w", err)
	}

	// Unwrap one more level if the result is itself an envelope
	if env.Success && len(env.Result) > 0 {
		var probe struct {
			Success *bool `json:"success"`
		}
		if err := json.Unmarshal(env.Result, &probe); err == nil && probe.Success != nil {
			return flatten(env.Result)
		}
	}

	return &Result{Success: env.Success, Result: env.Result, Error: env.Error}, nil
}
