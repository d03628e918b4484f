package store

import "fmt"

// baseSchema creates the tables as they existed in the first release.
// The optional todo columns arrived later and are added by ensureSchema's
// column probe so that older database files upgrade in place.
const baseSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	completed_at TEXT
);

CREATE TABLE IF NOT EXISTS subtasks (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	todo_id INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
	title   TEXT NOT NULL,
	is_done INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_subtasks_todo_id ON subtasks(todo_id);
`

// todoColumnUpgrades lists the add-only column migrations for the todos
// table, in the order they are applied. There is no version table; the
// schema state is derived by inspection on every open.
var todoColumnUpgrades = []struct {
	name string
	ddl  string
}{
	{"description", "ALTER TABLE todos ADD COLUMN description TEXT"},
	{"deadline", "ALTER TABLE todos ADD COLUMN deadline TEXT"},
}

// ensureSchema brings the schema to its final shape. It is idempotent and
// safe to run concurrently from independent connections: repeated runs
// issue no destructive statements and converge on the same structure.
func (s *SQLiteStore) ensureSchema() error {
	if _, err := s.db.Exec(baseSchema); err != nil {
		return fmt.Errorf("creating base tables: %w", err)
	}

	columns, err := s.tableColumns("todos")
	if err != nil {
		return err
	}

	for _, up := range todoColumnUpgrades {
		if columns[up.name] {
			continue
		}
		if _, err := s.db.Exec(up.ddl); err != nil {
			// Another opener may have added the column between the probe
			// and the ALTER. Re-probe before treating this as fatal.
			again, perr := s.tableColumns("todos")
			if perr == nil && again[up.name] {
				continue
			}
			return fmt.Errorf("adding todos.%s: %w", up.name, err)
		}
	}

	return nil
}

// tableColumns returns the set of column names currently on a table.
func (s *SQLiteStore) tableColumns(table string) (map[string]bool, error) {
	var names []string
	if err := s.db.Select(&names, "SELECT name FROM pragma_table_info(?)", table); err != nil {
		return nil, fmt.Errorf("inspecting columns of %s: %w", table, err)
	}

	columns := make(map[string]bool, len(names))
	for _, name := range names {
		columns[name] = true
	}
	return columns, nil
}
