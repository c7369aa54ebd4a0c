// Package priority orders tasks by urgency. A task's score is its own
// due-date and priority weight plus the scores of everything it blocks on,
// so unblocking a heavy chain floats to the top of the list.
package priority

import (
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

// Scoring weights.
const (
	dueHorizonDays = 25
	weightP0       = 20
	weightP1       = 5
)

// TaskSource is the read-only slice of the store the scorer needs.
// *store.Store satisfies it.
type TaskSource interface {
	ListTasks(status store.Status) ([]store.Task, error)
	DepGraph(kind store.DepKind) (map[string][]string, error)
}

type Scorer struct {
	tasks TaskSource

	// today supplies the reference date for due-date urgency; swapped in
	// tests.
	today func() time.Time
}

func NewScorer(tasks TaskSource) *Scorer {
	return &Scorer{
		tasks: tasks,
		today: time.Now,
	}
}

// ComputeAll scores every task against a fresh snapshot of tasks and
// blocker edges. It is a full recomputation each call; nothing is cached
// across calls because the underlying data may have changed.
func (s *Scorer) ComputeAll() (map[string]int, error) {
	tasks, err := s.tasks.ListTasks("")
	if err != nil {
		return nil, err
	}
	graph, err := s.tasks.DepGraph(store.DepBlocker)
	if err != nil {
		return nil, err
	}

	base := make(map[string]int, len(tasks))
	for _, t := range tasks {
		base[t.ID] = s.baseScore(t)
	}

	return totalScores(base, graph), nil
}

// baseScore is the task's own urgency: how close the due date is, plus its
// priority weight.
func (s *Scorer) baseScore(t store.Task) int {
	score := dueComponent(t.DueDate, s.today())
	switch t.Priority {
	case store.PriorityP0:
		score += weightP0
	case store.PriorityP1:
		score += weightP1
	}
	return score
}

// dueComponent maps a yyyy-mm-dd due date to [0, dueHorizonDays]: due today
// or overdue scores the full horizon, anything beyond it scores zero.
// Missing or unparsable dates score zero.
func dueComponent(dueDate string, today time.Time) int {
	if dueDate == "" {
		return 0
	}
	due, err := time.ParseInLocation("2006-01-02", dueDate, time.UTC)
	if err != nil {
		return 0
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	days := int(due.Sub(day).Hours() / 24)
	if days < 0 {
		days = 0
	}
	if days > dueHorizonDays {
		days = dueHorizonDays
	}
	return dueHorizonDays - days
}

// DFS node colors for one scoring pass.
const (
	unvisited = iota
	visiting
	scored
)

type frame struct {
	id   string
	next int // index into graph[id] of the next edge to walk
}

// totalScores propagates base scores along blocker edges with an explicit
// depth-first stack. A back edge into a node still on the stack is a cycle
// and contributes nothing; edges to unknown ids are skipped. Scores are
// memoized for the duration of the pass only.
func totalScores(base map[string]int, graph map[string][]string) map[string]int {
	color := make(map[string]int, len(base))
	total := make(map[string]int, len(base))

	for id := range base {
		if color[id] != unvisited {
			continue
		}
		color[id] = visiting
		total[id] = base[id]
		stack := []frame{{id: id}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			deps := graph[f.id]

			if f.next < len(deps) {
				dep := deps[f.next]
				f.next++

				if _, ok := base[dep]; !ok {
					continue // dangling edge
				}
				switch color[dep] {
				case visiting:
					// cycle: this edge contributes 0
				case scored:
					total[f.id] += total[dep]
				default:
					color[dep] = visiting
					total[dep] = base[dep]
					stack = append(stack, frame{id: dep})
				}
				continue
			}

			color[f.id] = scored
			done := *f
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				total[parent.id] += total[done.id]
			}
		}
	}
	return total
}
