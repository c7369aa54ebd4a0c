package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

// TaskStore is the slice of the task repository the orchestrator needs.
// *store.Store satisfies it; tests may substitute anything.
type TaskStore interface {
	GetTask(id string) (*store.Task, error)
	SetTaskStatus(id string, status store.Status) error
}

// SessionLedger records phase intervals. *store.Store satisfies it.
type SessionLedger interface {
	StartSession(taskID string, kind store.SessionKind, startTS int64) (*store.Session, error)
	EndSession(id string, endTS int64) error
}

// Callback receives an engine snapshot after a notification-worthy change.
type Callback func(Snapshot)

// Orchestrator drives the Engine from an external one-second cadence and
// turns its transitions into ledger records: one session per contiguous
// run of one phase. Pausing closes the session and resuming opens a new
// one, so session boundaries track run/pause cycles as well as phase
// flips.
//
// Not safe for concurrent use; callers on multiple goroutines must
// serialize externally.
type Orchestrator struct {
	engine *Engine
	tasks  TaskStore
	ledger SessionLedger

	activeTaskID string

	// Owned exclusively by openSession/closeSession. Empty means no open
	// interval, which keeps the at-most-one-open-session invariant local
	// to those two methods.
	activeSessionID string

	// now supplies timestamps for session boundaries; swapped in tests.
	now func() int64

	onTick        Callback
	onPhaseChange Callback
	onStateChange Callback
}

func NewOrchestrator(tasks TaskStore, ledger SessionLedger, workSec, breakSec int) *Orchestrator {
	return &Orchestrator{
		engine: NewEngine(workSec, breakSec),
		tasks:  tasks,
		ledger: ledger,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// SetOnTick registers the tick subscriber, replacing any previous one.
// Fired after every engine mutation so displays can repaint.
func (o *Orchestrator) SetOnTick(fn Callback) { o.onTick = fn }

// SetOnPhaseChange registers the phase-flip subscriber, replacing any
// previous one.
func (o *Orchestrator) SetOnPhaseChange(fn Callback) { o.onPhaseChange = fn }

// SetOnStateChange registers the start/pause/reset subscriber, replacing
// any previous one.
func (o *Orchestrator) SetOnStateChange(fn Callback) { o.onStateChange = fn }

func (o *Orchestrator) emitTick() {
	if o.onTick != nil {
		o.onTick(o.engine.Snapshot())
	}
}

func (o *Orchestrator) emitPhaseChange() {
	if o.onPhaseChange != nil {
		o.onPhaseChange(o.engine.Snapshot())
	}
}

func (o *Orchestrator) emitStateChange() {
	if o.onStateChange != nil {
		o.onStateChange(o.engine.Snapshot())
	}
}

func (o *Orchestrator) GetSnapshot() Snapshot {
	return o.engine.Snapshot()
}

// ActiveTaskID returns the task currently bound to the timer, which may be
// set even while the engine is idle or paused.
func (o *Orchestrator) ActiveTaskID() string {
	return o.activeTaskID
}

// SetActiveTask binds a task id without touching the run state.
func (o *Orchestrator) SetActiveTask(taskID string) {
	o.activeTaskID = taskID
}

// SetDurations applies new phase lengths to the underlying engine.
func (o *Orchestrator) SetDurations(workSec, breakSec int) {
	o.engine.SetDurations(workSec, breakSec)
	o.emitTick()
}

// Start begins (or resumes) the countdown for taskID. The id is validated
// before the engine is touched, so a failed Start leaves the timer exactly
// as it was. An idle engine starts a fresh work phase and flips the task to
// doing; a paused engine resumes and opens a fresh session for the current
// phase. Starting an already-running timer only re-affirms state.
func (o *Orchestrator) Start(taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("start timer: no task selected: %w", store.ErrInvalid)
	}
	if _, err := o.tasks.GetTask(taskID); err != nil {
		return fmt.Errorf("start timer: %w", err)
	}

	o.activeTaskID = taskID

	snap := o.engine.Snapshot()
	switch {
	case snap.IsIdle:
		o.engine.Start()
		if err := o.tasks.SetTaskStatus(taskID, store.StatusDoing); err != nil {
			return fmt.Errorf("start timer: %w", err)
		}
		if err := o.openSession(o.engine.Snapshot().Phase); err != nil {
			return err
		}
	case !snap.IsRunning:
		o.engine.Resume()
		if err := o.openSession(o.engine.Snapshot().Phase); err != nil {
			return err
		}
	}

	o.emitStateChange()
	o.emitTick()
	return nil
}

// Pause stops the countdown and closes the open session. Idle timers
// ignore it; pausing twice is the same as pausing once.
func (o *Orchestrator) Pause() error {
	snap := o.engine.Snapshot()
	if snap.IsIdle {
		return nil
	}
	if snap.IsRunning {
		o.engine.Pause()
		if err := o.closeSession(); err != nil {
			return err
		}
	}
	o.emitStateChange()
	o.emitTick()
	return nil
}

// Reset closes any open session and returns the engine to idle. Task
// status is left alone.
func (o *Orchestrator) Reset() error {
	err := o.closeSession()
	o.engine.Reset()
	o.emitStateChange()
	o.emitTick()
	return err
}

// MarkDoneAndStop marks the task done and, if it is the one on the timer,
// resets the countdown.
func (o *Orchestrator) MarkDoneAndStop(taskID string) error {
	if err := o.tasks.SetTaskStatus(taskID, store.StatusDone); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if o.activeTaskID == taskID {
		return o.Reset()
	}
	return nil
}

// Tick advances the countdown by one second. On a phase flip the old
// session is closed and a new one opened for the same task.
func (o *Orchestrator) Tick() error {
	snap := o.engine.Snapshot()
	if snap.IsIdle || !snap.IsRunning {
		return nil
	}

	phaseChanged := o.engine.Tick()
	o.emitTick()

	if phaseChanged {
		if err := o.openSession(o.engine.Snapshot().Phase); err != nil {
			return err
		}
		o.emitPhaseChange()
	}
	return nil
}

func sessionKind(p Phase) store.SessionKind {
	if p == PhaseBreak {
		return store.KindBreak
	}
	return store.KindWork
}

// openSession records the start of a phase interval for the active task.
// Any stale open session is closed first, so repeated calls cannot leave
// two open intervals behind.
func (o *Orchestrator) openSession(phase Phase) error {
	if o.activeTaskID == "" {
		return nil
	}
	if err := o.closeSession(); err != nil {
		return err
	}

	sess, err := o.ledger.StartSession(o.activeTaskID, sessionKind(phase), o.now())
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	o.activeSessionID = sess.ID
	return nil
}

// closeSession ends the open interval, if any. The ledger tolerates ids
// that are already closed or gone, so this is safe on every path.
func (o *Orchestrator) closeSession() error {
	if o.activeSessionID == "" {
		return nil
	}
	id := o.activeSessionID
	o.activeSessionID = ""
	if err := o.ledger.EndSession(id, o.now()); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}
