// ABOUTME: The five builtin task tools: add, list, complete, update, delete
// ABOUTME: Typed input structs per operation over a shared store handle

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskline/taskline/internal/store"
)

// Tool names for the five task operations.
const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolUpdateTask   = "update_task"
	ToolDeleteTask   = "delete_task"
)

// TaskView is the wire representation of a task in tool results.
type TaskView struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ListResult is the result payload of list_tasks.
type ListResult struct {
	Tasks []TaskView `json:"tasks"`
	Count int        `json:"count"`
}

// DeleteResult is the result payload of delete_task.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}

// TaskTools returns the five builtin task tools backed by the given store.
func TaskTools(s store.Store) []*Tool {
	h := &taskHandlers{store: s}
	return []*Tool{
		{
			Definition: &Definition{
				Name:        ToolAddTask,
				Description: "Add a new task to the user's todo list",
				InputSchema: `{"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"},"priority":{"type":"string","enum":["low","medium","high"]}},"required":["title"]}`,
			},
			Handler: h.AddTask,
		},
		{
			Definition: &Definition{
				Name:        ToolListTasks,
				Description: "List the user's tasks, optionally filtered by status",
				InputSchema: `{"type":"object","properties":{"status":{"type":"string","enum":["all","pending","completed"]}}}`,
			},
			Handler: h.ListTasks,
		},
		{
			Definition: &Definition{
				Name:        ToolCompleteTask,
				Description: "Mark a task as completed",
				InputSchema: `{"type":"object","properties":{"task_id":{"type":"string"}},"required":["task_id"]}`,
			},
			Handler: h.CompleteTask,
		},
		{
			Definition: &Definition{
				Name:        ToolUpdateTask,
				Description: "Update fields of an existing task",
				InputSchema: `{"type":"object","properties":{"task_id":{"type":"string"},"title":{"type":"string"},"description":{"type":"string"},"priority":{"type":"string","enum":["low","medium","high"]},"completed":{"type":"boolean"}},"required":["task_id"]}`,
			},
			Handler: h.UpdateTask,
		},
		{
			Definition: &Definition{
				Name:        ToolDeleteTask,
				Description: "Delete a task from the user's todo list",
				InputSchema: `{"type":"object","properties":{"task_id":{"type":"string"}},"required":["task_id"]}`,
			},
			Handler: h.DeleteTask,
		},
	}
}

type taskHandlers struct {
	store store.Store
}

// CoercePriority maps any unrecognized priority string to medium.
func CoercePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case store.PriorityLow:
		return store.PriorityLow
	case store.PriorityHigh:
		return store.PriorityHigh
	default:
		return store.PriorityMedium
	}
}

func viewOf(t *store.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

type addTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (h *taskHandlers) AddTask(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error) {
	var in addTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrorEnvelope("task title cannot be empty"), nil
	}

	task := &store.Task{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    CoercePriority(in.Priority),
	}
	if err := h.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	return SuccessEnvelope(viewOf(task))
}

type listTasksInput struct {
	Status string `json:"status"`
}

func (h *taskHandlers) ListTasks(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error) {
	var in listTasksInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
	}

	tasks, err := h.store.ListTasks(ctx, ownerID, in.Status)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = viewOf(t)
	}
	return SuccessEnvelope(ListResult{Tasks: views, Count: len(views)})
}

type completeTaskInput struct {
	TaskID string `json:"task_id"`
}

func (h *taskHandlers) CompleteTask(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error) {
	var in completeTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	task, err := h.store.GetTask(ctx, ownerID, in.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrorEnvelope("task not found"), nil
		}
		return nil, err
	}

	// Idempotent: completing an already-completed task succeeds
	task.Completed = true
	if err := h.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	return SuccessEnvelope(viewOf(task))
}

type updateTaskInput struct {
	TaskID      string  `json:"task_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

func (h *taskHandlers) UpdateTask(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error) {
	var in updateTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	task, err := h.store.GetTask(ctx, ownerID, in.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrorEnvelope("task not found"), nil
		}
		return nil, err
	}

	// Partial merge: only fields present in the input are applied
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return ErrorEnvelope("task title cannot be empty"), nil
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		task.Priority = CoercePriority(*in.Priority)
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	if err := h.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	return SuccessEnvelope(viewOf(task))
}

type deleteTaskInput struct {
	TaskID string `json:"task_id"`
}

func (h *taskHandlers) DeleteTask(ctx context.Context, ownerID string, input json.RawMessage) (json.RawMessage, error) {
	var in deleteTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := h.store.DeleteTask(ctx, ownerID, in.TaskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrorEnvelope("task not found"), nil
		}
		return nil, err
	}

	return SuccessEnvelope(DeleteResult{Deleted: true, TaskID: in.TaskID})
}
