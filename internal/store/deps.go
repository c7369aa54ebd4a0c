package store

import (
	"fmt"
	"time"
)

func validDepKind(kind DepKind) bool {
	return kind == DepBlocker || kind == DepWaiting
}

// AddDep inserts a directed dependency edge. Both endpoints must exist and
// a task may not depend on itself. Re-adding an existing edge is a no-op.
func (s *Store) AddDep(taskID, depID string, kind DepKind) error {
	if !validDepKind(kind) {
		return fmt.Errorf("add dep: kind %q: %w", kind, ErrInvalid)
	}
	if taskID == depID {
		return fmt.Errorf("add dep: task %s depends on itself: %w", taskID, ErrInvalid)
	}
	for _, id := range []string{taskID, depID} {
		var one int
		if err := s.db.QueryRow(`SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one); err != nil {
			return fmt.Errorf("add dep: task %s: %w", id, ErrNotFound)
		}
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO task_deps (task_id, dep_id, kind, created_at) VALUES (?, ?, ?, ?)`,
		taskID, depID, kind, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert dep: %w", err)
	}
	return nil
}

func (s *Store) RemoveDep(taskID, depID string, kind DepKind) error {
	_, err := s.db.Exec(
		`DELETE FROM task_deps WHERE task_id = ? AND dep_id = ? AND kind = ?`,
		taskID, depID, kind,
	)
	if err != nil {
		return fmt.Errorf("remove dep: %w", err)
	}
	return nil
}

// ListDeps returns the dep ids of the given kind for one task, in insertion
// order.
func (s *Store) ListDeps(taskID string, kind DepKind) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT dep_id FROM task_deps WHERE task_id = ? AND kind = ? ORDER BY created_at, dep_id`,
		taskID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("list deps: %w", err)
	}
	defer rows.Close()

	var deps []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		deps = append(deps, id)
	}
	return deps, rows.Err()
}

// DepGraph returns every edge of the given kind as an adjacency map from
// task id to its dep ids.
func (s *Store) DepGraph(kind DepKind) (map[string][]string, error) {
	rows, err := s.db.Query(
		`SELECT task_id, dep_id FROM task_deps WHERE kind = ? ORDER BY created_at, dep_id`,
		kind,
	)
	if err != nil {
		return nil, fmt.Errorf("dep graph: %w", err)
	}
	defer rows.Close()

	graph := make(map[string][]string)
	for rows.Next() {
		var taskID, depID string
		if err := rows.Scan(&taskID, &depID); err != nil {
			return nil, err
		}
		graph[taskID] = append(graph[taskID], depID)
	}
	return graph, rows.Err()
}
