// ABOUTME: Remote-model interpreter delegating to OpenRouter
// ABOUTME: Falls back silently to the rule path on any remote failure

package interpreter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/taskline/taskline/internal/tools"
)

// Remote asks an OpenRouter-hosted chat model to pick a tool call, with
// the registry's five schemas and tool_choice auto. On any transport or
// model failure it falls back to the rule interpreter; the user never
// sees evidence that a remote call was attempted.
type Remote struct {
	client   openai.Client
	model    string
	registry *tools.Registry
	fallback Interpreter
	logger   *slog.Logger
}

// NewRemote creates a remote interpreter backed by the OpenAI-compatible
// chat-completions API at baseURL.
func NewRemote(baseURL, apiKey, model string, registry *tools.Registry, fallback Interpreter) *Remote {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &Remote{
		client:   client,
		model:    model,
		registry: registry,
		fallback: fallback,
		logger:   slog.Default().With("component", "interpreter"),
	}
}

// Interpret submits the conversation plus the tool schemas to the remote
// model. Returned tool calls are accepted verbatim iff the name is
// registered; unregistered names are dropped.
func (r *Remote) Interpret(ctx context.Context, text string, history []Message) (*Result, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(text))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(r.model),
		Tools:    r.toolSchemas(),
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		},
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		// Silent fallback: the failure reason surfaces only here
		r.logger.Debug("remote model unavailable, using rule interpreter", "error", err)
		return r.fallback.Interpret(ctx, text, history)
	}
	if len(resp.Choices) == 0 {
		r.logger.Debug("remote model returned no choices, using rule interpreter")
		return r.fallback.Interpret(ctx, text, history)
	}

	choice := resp.Choices[0]
	result := &Result{Reply: choice.Message.Content}
	if result.Reply == "" {
		result.Reply = "I processed your request."
	}

	for _, tc := range choice.Message.ToolCalls {
		name := tc.Function.Name
		if !r.registry.Has(name) {
			r.logger.Debug("dropping unregistered tool call", "name", name)
			continue
		}
		args := tc.Function.Arguments
		if !json.Valid([]byte(args)) {
			r.logger.Debug("dropping tool call with malformed arguments", "name", name)
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			Name:      name,
			Arguments: json.RawMessage(args),
		})
	}

	return result, nil
}

// toolSchemas converts the registry definitions into OpenAI function tools.
func (r *Remote) toolSchemas() []openai.ChatCompletionToolUnionParam {
	defs := r.registry.Definitions()
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		var params openai.FunctionParameters
		if err := json.Unmarshal([]byte(def.InputSchema), &params); err != nil {
			r.logger.Warn("skipping tool with invalid schema", "name", def.Name, "error", err)
			continue
		}
		out = append(out, openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		))
	}
	return out
}
