package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateTask(title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("create task: empty title: %w", ErrInvalid)
	}

	id := uuid.NewString()
	now := time.Now().Unix()
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, status, priority, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, StatusTodo, PriorityP2, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*Task, error) {
	t := &Task{}
	var dueDate sql.NullString
	err := s.db.QueryRow(
		`SELECT id, title, status, notes, due_date, priority, created_at, updated_at FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Status, &t.Notes, &dueDate, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	t.DueDate = dueDate.String
	return t, nil
}

// ListTasks returns tasks with the given status, most recently updated
// first. An empty status returns every task.
func (s *Store) ListTasks(status Status) ([]Task, error) {
	query := `SELECT id, title, status, notes, due_date, priority, created_at, updated_at FROM tasks`
	var args []any
	if status != "" {
		if !ValidStatus(status) {
			return nil, fmt.Errorf("list tasks: status %q: %w", status, ErrInvalid)
		}
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var dueDate sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Notes, &dueDate, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.DueDate = dueDate.String
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) RenameTask(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("rename task: empty title: %w", ErrInvalid)
	}
	return s.updateTask(id, `UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`, title)
}

func (s *Store) SetTaskStatus(id string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("set status: %q: %w", status, ErrInvalid)
	}
	return s.updateTask(id, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, string(status))
}

// SetTaskDueDate sets or clears (empty string) a task's due date.
func (s *Store) SetTaskDueDate(id, dueDate string) error {
	if dueDate == "" {
		return s.updateTask(id, `UPDATE tasks SET due_date = NULL, updated_at = ? WHERE id = ?`)
	}
	if _, err := time.Parse("2006-01-02", dueDate); err != nil {
		return fmt.Errorf("set due date: %q: %w", dueDate, ErrInvalid)
	}
	return s.updateTask(id, `UPDATE tasks SET due_date = ?, updated_at = ? WHERE id = ?`, dueDate)
}

func (s *Store) SetTaskPriority(id string, priority Priority) error {
	if !ValidPriority(priority) {
		return fmt.Errorf("set priority: %q: %w", priority, ErrInvalid)
	}
	return s.updateTask(id, `UPDATE tasks SET priority = ?, updated_at = ? WHERE id = ?`, string(priority))
}

func (s *Store) SetTaskNotes(id, notes string) error {
	return s.updateTask(id, `UPDATE tasks SET notes = ?, updated_at = ? WHERE id = ?`, notes)
}

// updateTask runs an UPDATE whose final two placeholders are updated_at and
// id, reporting ErrNotFound when no row matched.
func (s *Store) updateTask(id, query string, args ...any) error {
	args = append(args, time.Now().Unix(), id)
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task. Its sessions and dependency edges go with it
// via foreign-key cascade.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}
