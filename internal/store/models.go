package store

// Status is a task's lifecycle state.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// ValidStatus reports whether s is one of the known task states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Priority is a task's urgency tag.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// ValidPriority reports whether p is one of the known priority tags.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2:
		return true
	}
	return false
}

// SessionKind is the phase a session was recorded for.
type SessionKind string

const (
	KindWork  SessionKind = "work"
	KindBreak SessionKind = "break"
)

// DepKind categorizes a dependency edge. Blocker edges feed the priority
// scorer; waiting edges are informational only.
type DepKind string

const (
	DepBlocker DepKind = "blocker"
	DepWaiting DepKind = "waiting"
)

type Task struct {
	ID        string
	Title     string
	Status    Status
	Notes     string
	DueDate   string // yyyy-mm-dd, empty when unset
	Priority  Priority
	CreatedAt int64
	UpdatedAt int64
}

// Session is one recorded work or break interval attributed to a task.
// EndTS and DurationSec are nil while the interval is still open.
type Session struct {
	ID          string
	TaskID      string
	Kind        SessionKind
	StartTS     int64
	EndTS       *int64
	DurationSec *int64
}

// Dep is a directed dependency edge between two tasks.
type Dep struct {
	TaskID    string
	DepID     string
	Kind      DepKind
	CreatedAt int64
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter ledger queries.
type SessionFilter struct {
	TaskID *string
	Kind   *SessionKind
	From   *int64
	To     *int64
	Limit  int
}

// DayTotal is an aggregated amount of closed work time for one calendar day.
type DayTotal struct {
	Date         string // yyyy-mm-dd
	TotalSeconds int64
	SessionCount int
}
