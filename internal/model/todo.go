package model

import "time"

// Todo is a single to-do item with optional nested subtasks.
type Todo struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Deadline    *string    `json:"deadline,omitempty" db:"deadline"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Subtasks is populated on every read, in creation order.
	Subtasks []Subtask `json:"subtasks" db:"-"`

	// SubtaskTotal and SubtaskDone are derived from the subtask rows on
	// every read; they are never stored on the todo row.
	SubtaskTotal int `json:"subtask_total" db:"-"`
	SubtaskDone  int `json:"subtask_done" db:"-"`
}

// Completed reports whether the todo has been marked done.
// CompletedAt is set at most once; there is no way back to open.
func (t *Todo) Completed() bool {
	return t.CompletedAt != nil
}

// Subtask is a smaller unit of work within a todo.
// Its lifecycle is bound to the parent todo (CASCADE delete).
type Subtask struct {
	ID     int64  `json:"id" db:"id"`
	TodoID int64  `json:"todo_id" db:"todo_id"`
	Title  string `json:"title" db:"title"`
	IsDone bool   `json:"is_done" db:"is_done"`
}
