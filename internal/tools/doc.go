// Package tools provides the task-operation tool registry and its HTTP
// execution surface.
//
// Five builtin tools are registered at wiring time: add_task, list_tasks,
// complete_task, update_task, delete_task. Each handler receives the
// authenticated owner ID and a JSON argument bag, performs one store
// operation, and returns a uniform {success, result|error} envelope.
// Expected failures (validation, not found) travel inside the envelope;
// only genuinely unexpected errors escape a handler.
//
// The registry can be served in-process or over HTTP (POST /execute),
// letting the chat service and a standalone tool server share handlers.
package tools
