// Package timer holds the Pomodoro countdown core: a pure phase state
// machine (Engine) and an Orchestrator that binds it to task and session
// persistence. Nothing here self-schedules; the host loop calls Tick once
// per second.
package timer

// Phase is the kind of interval currently counting down.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// Default phase lengths in seconds.
const (
	DefaultWorkSec  = 25 * 60
	DefaultBreakSec = 5 * 60
)

// Snapshot is a read-only copy of the engine state. IsIdle is true only
// before the first Start or after a Reset.
type Snapshot struct {
	Phase        Phase
	RemainingSec int
	IsRunning    bool
	IsIdle       bool
}

// Engine is a pure countdown state machine. Every operation is a total
// function over the current state; there are no failure modes and no I/O.
type Engine struct {
	workSec  int
	breakSec int

	phase     Phase
	remaining int
	running   bool
	idle      bool
}

// NewEngine returns an idle engine. Non-positive durations fall back to the
// 25/5 minute defaults.
func NewEngine(workSec, breakSec int) *Engine {
	if workSec <= 0 {
		workSec = DefaultWorkSec
	}
	if breakSec <= 0 {
		breakSec = DefaultBreakSec
	}
	return &Engine{
		workSec:   workSec,
		breakSec:  breakSec,
		phase:     PhaseWork,
		remaining: workSec,
		idle:      true,
	}
}

// SetDurations swaps the phase lengths. A running or paused countdown
// keeps its remaining time; the new lengths apply from the next phase
// load. Idle engines pick up the new work length immediately.
func (e *Engine) SetDurations(workSec, breakSec int) {
	if workSec <= 0 {
		workSec = DefaultWorkSec
	}
	if breakSec <= 0 {
		breakSec = DefaultBreakSec
	}
	e.workSec = workSec
	e.breakSec = breakSec
	if e.idle {
		e.remaining = workSec
	}
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Phase:        e.phase,
		RemainingSec: e.remaining,
		IsRunning:    e.running,
		IsIdle:       e.idle,
	}
}

// Start begins a fresh work phase. Restart semantics: even a running engine
// is forced back to a full work countdown.
func (e *Engine) Start() {
	e.phase = PhaseWork
	e.remaining = e.workSec
	e.running = true
	e.idle = false
}

func (e *Engine) Pause() {
	if e.idle {
		return
	}
	e.running = false
}

func (e *Engine) Resume() {
	if e.idle {
		return
	}
	e.running = true
}

// Reset returns the engine to its initial idle state.
func (e *Engine) Reset() {
	e.phase = PhaseWork
	e.remaining = e.workSec
	e.running = false
	e.idle = true
}

// Tick consumes one second. It reports true exactly when the countdown
// reached zero and the phase flipped, reloading the new phase's duration.
// Idle or paused engines ignore ticks.
func (e *Engine) Tick() bool {
	if e.idle || !e.running {
		return false
	}

	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining > 0 {
		return false
	}

	if e.phase == PhaseWork {
		e.phase = PhaseBreak
		e.remaining = e.breakSec
	} else {
		e.phase = PhaseWork
		e.remaining = e.workSec
	}
	return true
}
