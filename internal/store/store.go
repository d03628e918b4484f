package store

import (
	"context"
	"errors"

	"simpletodo/internal/model"
)

// ErrNotFound is returned by mutations whose target id matched no rows.
// Callers should translate it into their own "not found" response.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface the web layer consumes.
// Every read recomputes subtask aggregates from the subtask rows;
// nothing is cached between calls.
type Store interface {
	// CreateTodo inserts a new open todo and returns it fully populated.
	// Title must be non-empty; description and deadline may be nil.
	CreateTodo(ctx context.Context, title string, description, deadline *string) (*model.Todo, error)

	// UpdateTodo overwrites description and deadline. A nil value clears
	// the column; callers that want to preserve a value must resupply it.
	UpdateTodo(ctx context.Context, id int64, description, deadline *string) error

	// ListTodos returns all todos, newest first, with subtasks attached.
	ListTodos(ctx context.Context) ([]model.Todo, error)

	// GetTodo returns a single todo with subtasks attached.
	GetTodo(ctx context.Context, id int64) (*model.Todo, error)

	// AddSubtask inserts a new open subtask under the given todo.
	// The todo id is not checked here; the foreign key rejects orphans.
	AddSubtask(ctx context.Context, todoID int64, title string) error

	// ToggleSubtask flips the done state of a subtask. Toggling an id
	// that no longer exists is a no-op, not an error.
	ToggleSubtask(ctx context.Context, id int64) error

	// CompleteTodo stamps completed_at on an open todo. Completing a
	// missing or already-completed todo returns ErrNotFound; the two
	// causes are not distinguished.
	CompleteTodo(ctx context.Context, id int64) error

	// DeleteTodo removes a todo and, via the cascade, its subtasks.
	DeleteTodo(ctx context.Context, id int64) error

	Close() error
}
