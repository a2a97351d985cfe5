// ABOUTME: Rule-based command interpreter for the task chatbot
// ABOUTME: Fixed-priority keyword classification with argument extraction

package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/taskline/taskline/internal/tools"
)

// ToolCall is one structured operation produced by interpretation.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Result is the outcome of interpreting one utterance: a draft reply and
// zero or one tool calls.
type Result struct {
	Reply     string
	ToolCalls []ToolCall
}

// Message is one prior conversation turn, passed to the remote model for
// context. The rule path ignores history.
type Message struct {
	Role    string
	Content string
}

// Interpreter maps one utterance (plus prior turns) to at most one tool call.
type Interpreter interface {
	Interpret(ctx context.Context, text string, history []Message) (*Result, error)
}

// taskIDPattern matches only canonical 36-character hyphenated hex IDs.
// Bare integers and truncated prefixes never match, so ambiguous partial
// identifiers are never acted on.
var taskIDPattern = regexp.MustCompile(`(?i)\b([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})\b`)

// fieldValuePattern captures the value after "to"/"as"/"set to" up to a
// comma or period. Known-imprecise on trailing clauses.
var fieldValuePattern = regexp.MustCompile(`(?i)(?:to|as|set to)\s+([^,.]+)`)

var (
	listKeywords     = []string{"show", "list", "display", "view", "my tasks", "what tasks", "all tasks"}
	completeKeywords = []string{"complete", "finish", "done", "mark as complete", "complete task"}
	deleteKeywords   = []string{"delete", "remove", "erase", "cancel", "delete task"}
	updateKeywords   = []string{"update", "change", "modify", "edit", "adjust", "update task"}
)

// titleLadder lists the add-title extraction prefixes in trial order.
var titleLadder = []string{"add a task to ", "add task to ", "add to ", "to "}

// Rules is the keyword-matching interpreter. It is stateless and never
// returns an error.
type Rules struct{}

// NewRules creates the rule-based interpreter.
func NewRules() *Rules {
	return &Rules{}
}

// Interpret classifies text into one of the five intents, first match wins.
// Add is checked before list so "add task to my list" is not misread as a
// list request; complete and delete are checked before update so explicit
// commands are not absorbed by the broader update keyword set.
func (r *Rules) Interpret(_ context.Context, text string, _ []Message) (*Result, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "add") &&
		(strings.Contains(lower, "task") || strings.Contains(lower, "buy") || strings.Contains(lower, "do ")):
		return interpretAdd(text, lower), nil

	case containsAny(lower, listKeywords):
		return interpretList(lower), nil

	case containsAny(lower, completeKeywords):
		return interpretTargeted(text, tools.ToolCompleteTask, "complete",
			func(id string) string { return fmt.Sprintf("I'll mark task %s as complete", id) }), nil

	case containsAny(lower, deleteKeywords):
		return interpretTargeted(text, tools.ToolDeleteTask, "delete",
			func(id string) string { return fmt.Sprintf("I'll delete task %s", id) }), nil

	case containsAny(lower, updateKeywords):
		return interpretUpdate(text, lower), nil

	default:
		return &Result{
			Reply: fmt.Sprintf("I'm not sure what to do with: '%s'. Try asking me to add, list, complete, update, or delete tasks.", text),
		}, nil
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// interpretAdd extracts the title via the prefix ladder, falling back to
// the whole input. An empty extracted title still emits the tool call;
// rejecting it is the handler's job.
func interpretAdd(text, lower string) *Result {
	title := text
	for _, prefix := range titleLadder {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			title = text[idx+len(prefix):]
			break
		}
	}
	title = strings.TrimSpace(title)
	title = strings.TrimRight(title, ".!?")

	args, _ := json.Marshal(map[string]string{"title": title})
	return &Result{
		Reply:     fmt.Sprintf("I'll add a task for you: %s", title),
		ToolCalls: []ToolCall{{Name: tools.ToolAddTask, Arguments: args}},
	}
}

func interpretList(lower string) *Result {
	status := "all"
	if strings.Contains(lower, "completed") {
		status = "completed"
	} else if strings.Contains(lower, "pending") || strings.Contains(lower, "incomplete") {
		status = "pending"
	}

	args, _ := json.Marshal(map[string]string{"status": status})
	return &Result{
		Reply:     "I'll show you your tasks",
		ToolCalls: []ToolCall{{Name: tools.ToolListTasks, Arguments: args}},
	}
}

// interpretTargeted handles complete and delete: both require a canonical
// task ID anywhere in the text and share the no-ID fallback reply.
func interpretTargeted(text, tool, verb string, reply func(id string) string) *Result {
	id := taskIDPattern.FindString(text)
	if id == "" {
		return &Result{Reply: missingIDReply(verb)}
	}

	args, _ := json.Marshal(map[string]string{"task_id": id})
	return &Result{
		Reply:     reply(id),
		ToolCalls: []ToolCall{{Name: tool, Arguments: args}},
	}
}

func interpretUpdate(text, lower string) *Result {
	id := taskIDPattern.FindString(text)
	if id == "" {
		return &Result{Reply: missingIDReply("update")}
	}

	params := map[string]any{"task_id": id}

	// "high" wins when several priority words appear
	switch {
	case strings.Contains(lower, "high"):
		params["priority"] = "high"
	case strings.Contains(lower, "medium"):
		params["priority"] = "medium"
	case strings.Contains(lower, "low"):
		params["priority"] = "low"
	}

	// Positive forms win, so "incomplete" reads as "complete". Texts with
	// these words usually classify as the complete intent before reaching
	// here; this extractor matters for callers passing update text directly.
	switch {
	case strings.Contains(lower, "complete"), strings.Contains(lower, "done"):
		params["completed"] = true
	case strings.Contains(lower, "incomplete"), strings.Contains(lower, "not done"):
		params["completed"] = false
	}

	if strings.Contains(lower, "title") || strings.Contains(lower, "rename") {
		if m := fieldValuePattern.FindStringSubmatch(text); m != nil {
			params["title"] = strings.TrimSpace(m[1])
		}
	}
	if strings.Contains(lower, "description") || strings.Contains(lower, "desc") {
		if m := fieldValuePattern.FindStringSubmatch(text); m != nil {
			params["description"] = strings.TrimSpace(m[1])
		}
	}

	args, _ := json.Marshal(params)
	return &Result{
		Reply:     fmt.Sprintf("I'll update task %s", id),
		ToolCalls: []ToolCall{{Name: tools.ToolUpdateTask, Arguments: args}},
	}
}

func missingIDReply(verb string) string {
	return fmt.Sprintf("I couldn't find a valid task ID in your request. Please list your tasks first to see their IDs, then specify which task to %s by its ID.", verb)
}
