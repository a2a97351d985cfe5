// ABOUTME: SQLite store methods for owner-scoped task persistence
// ABOUTME: All lookups and mutations are filtered by (user_id, id)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateTask creates a new task. created_at and updated_at are set to the
// same instant so a freshly created task satisfies created == updated.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = task.CreatedAt
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}

	var description *string
	if task.Description != "" {
		description = &task.Description
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, completed, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.UserID, task.Title, description, task.Completed, task.Priority,
		task.CreatedAt.Format(time.RFC3339Nano), task.UpdatedAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by ID, scoped to its owner.
// Returns ErrNotFound when the task is absent or owned by another user.
func (s *SQLiteStore) GetTask(ctx context.Context, ownerID, id string) (*Task, error) {
	var t Task
	var description sql.NullString
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, completed, priority, created_at, updated_at
		FROM tasks WHERE id = ? AND user_id = ?
	`, id, ownerID).Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Completed, &t.Priority, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}

	t.Description = description.String
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &t, nil
}

// ListTasks lists tasks for an owner in insertion order. status "pending"
// filters to incomplete tasks, "completed" to completed ones; any other
// value returns everything.
func (s *SQLiteStore) ListTasks(ctx context.Context, ownerID, status string) ([]*Task, error) {
	var args []any
	query := `SELECT id, user_id, title, description, completed, priority, created_at, updated_at FROM tasks WHERE user_id = ?`
	args = append(args, ownerID)

	switch status {
	case "pending":
		query += ` AND completed = 0`
	case "completed":
		query += ` AND completed = 1`
	}
	query += ` ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*Task
	for rows.Next() {
		var t Task
		var description sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Completed, &t.Priority, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// UpdateTask persists the full state of an already-loaded task, scoped to
// its owner. updated_at is bumped; created_at is never touched.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now()

	var description *string
	if task.Description != "" {
		description = &task.Description
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, task.Title, description, task.Completed, task.Priority,
		task.UpdatedAt.Format(time.RFC3339Nano), task.ID, task.UserID)

	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask deletes a task by ID, scoped to its owner.
// Returns ErrNotFound when no owned row was removed.
func (s *SQLiteStore) DeleteTask(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
