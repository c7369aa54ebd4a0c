package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartSession persists a new open interval. The caller supplies startTS so
// orchestration stays deterministic under test.
func (s *Store) StartSession(taskID string, kind SessionKind, startTS int64) (*Session, error) {
	if kind != KindWork && kind != KindBreak {
		return nil, fmt.Errorf("start session: kind %q: %w", kind, ErrInvalid)
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, task_id, kind, start_ts, end_ts, duration_sec) VALUES (?, ?, ?, ?, NULL, NULL)`,
		id, taskID, kind, startTS,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s.GetSession(id)
}

// EndSession closes an open interval, deriving duration_sec from the stored
// start. Unknown or already-closed ids are tolerated without error so that
// every safety path in the orchestrator can close unconditionally.
func (s *Store) EndSession(id string, endTS int64) error {
	var startTS int64
	err := s.db.QueryRow(
		`SELECT start_ts FROM sessions WHERE id = ? AND end_ts IS NULL`, id,
	).Scan(&startTS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get session start: %w", err)
	}

	duration := endTS - startTS
	if duration < 0 {
		duration = 0
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET end_ts = ?, duration_sec = ? WHERE id = ?`,
		endTS, duration, id,
	)
	if err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetSession(id string) (*Session, error) {
	sess := &Session{}
	var endTS, duration sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, task_id, kind, start_ts, end_ts, duration_sec FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.TaskID, &sess.Kind, &sess.StartTS, &endTS, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if endTS.Valid {
		sess.EndTS = &endTS.Int64
	}
	if duration.Valid {
		sess.DurationSec = &duration.Int64
	}
	return sess, nil
}

// GetOpenSession returns the current open interval, or (nil, nil) when the
// ledger has none.
func (s *Store) GetOpenSession() (*Session, error) {
	sess := &Session{}
	err := s.db.QueryRow(
		`SELECT id, task_id, kind, start_ts FROM sessions WHERE end_ts IS NULL ORDER BY start_ts DESC, id LIMIT 1`,
	).Scan(&sess.ID, &sess.TaskID, &sess.Kind, &sess.StartTS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return sess, nil
}

func (s *Store) ListSessions(f SessionFilter) ([]Session, error) {
	query := `SELECT id, task_id, kind, start_ts, end_ts, duration_sec FROM sessions WHERE 1=1`
	var args []any

	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.Kind != nil {
		query += ` AND kind = ?`
		args = append(args, *f.Kind)
	}
	if f.From != nil {
		query += ` AND start_ts >= ?`
		args = append(args, *f.From)
	}
	if f.To != nil {
		query += ` AND start_ts < ?`
		args = append(args, *f.To)
	}
	query += ` ORDER BY start_ts DESC, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endTS, duration sql.NullInt64
		if err := rows.Scan(&sess.ID, &sess.TaskID, &sess.Kind, &sess.StartTS, &endTS, &duration); err != nil {
			return nil, err
		}
		if endTS.Valid {
			sess.EndTS = &endTS.Int64
		}
		if duration.Valid {
			sess.DurationSec = &duration.Int64
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// WorkSecondsForTask sums closed work time for one task, optionally limited
// to sessions starting at or after sinceTS (pass 0 for all time). Open
// sessions never contribute.
func (s *Store) WorkSecondsForTask(taskID string, sinceTS int64) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration_sec), 0)
		FROM sessions
		WHERE kind = 'work' AND end_ts IS NOT NULL AND task_id = ? AND start_ts >= ?`,
		taskID, sinceTS,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("work seconds for task: %w", err)
	}
	return total.Int64, nil
}

// WorkSecondsToday sums closed work time since local midnight.
func (s *Store) WorkSecondsToday() (int64, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration_sec), 0)
		FROM sessions
		WHERE kind = 'work' AND end_ts IS NOT NULL AND start_ts >= ?`,
		midnight.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("work seconds today: %w", err)
	}
	return total.Int64, nil
}

// DailyWorkTotals aggregates closed work time per local calendar day over
// [from, to).
func (s *Store) DailyWorkTotals(from, to time.Time) ([]DayTotal, error) {
	rows, err := s.db.Query(`
		SELECT date(start_ts, 'unixepoch', 'localtime') AS day,
		       COALESCE(SUM(duration_sec), 0), COUNT(*)
		FROM sessions
		WHERE kind = 'work' AND end_ts IS NOT NULL
		  AND start_ts >= ? AND start_ts < ?
		GROUP BY day
		ORDER BY day`,
		from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("daily work totals: %w", err)
	}
	defer rows.Close()

	var totals []DayTotal
	for rows.Next() {
		var dt DayTotal
		if err := rows.Scan(&dt.Date, &dt.TotalSeconds, &dt.SessionCount); err != nil {
			return nil, err
		}
		totals = append(totals, dt)
	}
	return totals, rows.Err()
}
