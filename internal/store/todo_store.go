package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"simpletodo/internal/model"
)

// Timestamps are stored as RFC3339 UTC text: fixed width, sortable, and
// unambiguous across timezones.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime falls back to the current time when a stored value does not
// parse. A malformed row renders as fresh instead of failing the read.
func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}

// CreateTodo inserts a new open todo and returns it fully populated.
func (s *SQLiteStore) CreateTodo(
	ctx context.Context,
	title string,
	description, deadline *string,
) (*model.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("todo title must not be empty")
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (title, description, deadline, created_at)
		VALUES (?, ?, ?, ?)`,
		title, description, deadline, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new todo id: %w", err)
	}

	return &model.Todo{
		ID:          id,
		Title:       title,
		Description: description,
		Deadline:    deadline,
		CreatedAt:   now,
		Subtasks:    []model.Subtask{},
	}, nil
}

// UpdateTodo overwrites description and deadline on an existing todo.
// Nil clears the column; there is no partial update.
func (s *SQLiteStore) UpdateTodo(
	ctx context.Context,
	id int64,
	description, deadline *string,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE todos SET description = ?, deadline = ? WHERE id = ?",
		description, deadline, id,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTodos returns all todos, newest first, each with its subtasks in
// creation order and the aggregate counts derived from them.
func (s *SQLiteStore) ListTodos(ctx context.Context) ([]model.Todo, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, title, description, deadline, created_at, completed_at
		FROM todos ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range todos {
		if err := s.attachSubtasks(ctx, &todos[i]); err != nil {
			return nil, err
		}
	}

	return todos, nil
}

// GetTodo returns a single todo with its subtasks attached.
func (s *SQLiteStore) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT id, title, description, deadline, created_at, completed_at
		FROM todos WHERE id = ?`, id)

	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}

	if err := s.attachSubtasks(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// AddSubtask inserts a new open subtask under the given todo. The todo id
// is not validated here; inserting under a nonexistent todo fails on the
// foreign key constraint.
func (s *SQLiteStore) AddSubtask(ctx context.Context, todoID int64, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("subtask title must not be empty")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO subtasks (todo_id, title) VALUES (?, ?)",
		todoID, title,
	)
	if err != nil {
		return fmt.Errorf("adding subtask to todo %d: %w", todoID, err)
	}
	return nil
}

// ToggleSubtask flips the done state of a subtask. Zero affected rows is
// deliberately not an error: toggling a subtask that was deleted underneath
// the form is a no-op and the page re-renders current state.
func (s *SQLiteStore) ToggleSubtask(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE subtasks SET is_done = CASE WHEN is_done = 0 THEN 1 ELSE 0 END WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("toggling subtask %d: %w", id, err)
	}
	return nil
}

// CompleteTodo stamps completed_at on an open todo. The IS NULL guard makes
// the transition one-way; a missing and an already-completed todo are both
// reported as ErrNotFound.
func (s *SQLiteStore) CompleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE todos SET completed_at = ? WHERE id = ? AND completed_at IS NULL",
		formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("completing todo %d: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("completing todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTodo removes a todo; the cascade removes its subtasks in the same
// statement.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// attachSubtasks loads the subtasks for a todo in creation order and
// derives the aggregate counts from the loaded rows.
func (s *SQLiteStore) attachSubtasks(ctx context.Context, todo *model.Todo) error {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, todo_id, title, is_done
		FROM subtasks WHERE todo_id = ? ORDER BY id`, todo.ID)
	if err != nil {
		return fmt.Errorf("querying subtasks of todo %d: %w", todo.ID, err)
	}
	defer rows.Close()

	subtasks := []model.Subtask{}
	done := 0
	for rows.Next() {
		var (
			subtask model.Subtask
			doneInt int
		)
		if err := rows.Scan(&subtask.ID, &subtask.TodoID, &subtask.Title, &doneInt); err != nil {
			return fmt.Errorf("scanning subtask row: %w", err)
		}
		subtask.IsDone = doneInt != 0
		if subtask.IsDone {
			done++
		}
		subtasks = append(subtasks, subtask)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	todo.Subtasks = subtasks
	todo.SubtaskTotal = len(subtasks)
	todo.SubtaskDone = done
	return nil
}

// scanTodo scans a todo row from either sqlx.Rows or sqlx.Row.
func scanTodo(row interface{ Scan(dest ...interface{}) error }) (model.Todo, error) {
	var (
		todo      model.Todo
		created   string
		completed *string
	)

	err := row.Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Deadline,
		&created, &completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, err
		}
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}

	todo.CreatedAt = parseTime(created)
	if completed != nil {
		t := parseTime(*completed)
		todo.CompletedAt = &t
	}

	return todo, nil
}
