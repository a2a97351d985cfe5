// ABOUTME: Tests for the remote interpreter's fallback behavior
// ABOUTME: An unreachable endpoint must degrade silently to the rule path

package interpreter

import (
	"context"
	"testing"
	"time"

	"github.com/taskline/taskline/internal/tools"
)

func TestRemote_FallsBackWhenUnreachable(t *testing.T) {
	registry := tools.NewRegistry()
	remote := NewRemote("http://127.0.0.1:1", "test-key", "test-model", registry, NewRules())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := remote.Interpret(ctx, "add a task to buy milk", nil)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	// The rule interpreter's answer, with no surfaced remote error
	if res.Reply != "I'll add a task for you: buy milk" {
		t.Errorf("reply = %q", res.Reply)
	}
	if len(res.ToolCalls) != 1 || res.ToolCalls[0].Name != tools.ToolAddTask {
		t.Fatalf("tool calls = %+v, want one add_task", res.ToolCalls)
	}
}
