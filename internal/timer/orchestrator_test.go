package timer

import (
	"errors"
	"testing"

	"github.com/sadopc/pomotrack/internal/store"
)

// The orchestrator is tested against the real SQLite store in memory, the
// same way the TUI uses it.

func newTestOrchestrator(t *testing.T, workSec, breakSec int) (*Orchestrator, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	o := NewOrchestrator(s, s, workSec, breakSec)
	// Deterministic clock: each timestamp read advances one second.
	var clock int64 = 1_000_000
	o.now = func() int64 {
		clock++
		return clock
	}
	return o, s
}

func mustTask(t *testing.T, s *store.Store, title string) *store.Task {
	t.Helper()
	task, err := s.CreateTask(title)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func openSessions(t *testing.T, s *store.Store) []store.Session {
	t.Helper()
	all, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	var open []store.Session
	for _, sess := range all {
		if sess.EndTS == nil {
			open = append(open, sess)
		}
	}
	return open
}

func TestStartValidation(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	mustTask(t, s, "real")

	if err := o.Start(""); !errors.Is(err, store.ErrInvalid) {
		t.Fatalf("empty id: expected ErrInvalid, got %v", err)
	}
	if err := o.Start("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}

	// Failed starts must leave the engine untouched.
	snap := o.GetSnapshot()
	if !snap.IsIdle || snap.IsRunning || snap.RemainingSec != 10 {
		t.Fatalf("engine mutated by failed start: %+v", snap)
	}
	if n := len(openSessions(t, s)); n != 0 {
		t.Fatalf("failed start opened %d sessions", n)
	}
}

func TestStartOpensWorkSessionAndMarksDoing(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	task := mustTask(t, s, "t")

	if err := o.Start(task.ID); err != nil {
		t.Fatal(err)
	}

	snap := o.GetSnapshot()
	if snap.Phase != PhaseWork || !snap.IsRunning || snap.IsIdle {
		t.Fatalf("after start: %+v", snap)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != store.StatusDoing {
		t.Fatalf("status = %q, want doing", got.Status)
	}

	open := openSessions(t, s)
	if len(open) != 1 {
		t.Fatalf("open sessions = %d, want 1", len(open))
	}
	if open[0].TaskID != task.ID || open[0].Kind != store.KindWork {
		t.Fatalf("open session = %+v", open[0])
	}
}

func TestTickFlipsPhaseAndRollsSession(t *testing.T) {
	o, s := newTestOrchestrator(t, 3, 2)
	task := mustTask(t, s, "t")
	o.Start(task.ID)

	var phaseFlips []Snapshot
	var ticks int
	o.SetOnPhaseChange(func(snap Snapshot) { phaseFlips = append(phaseFlips, snap) })
	o.SetOnTick(func(Snapshot) { ticks++ })

	for i := 0; i < 3; i++ {
		if err := o.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	if ticks != 3 {
		t.Fatalf("tick notifications = %d, want 3", ticks)
	}
	if len(phaseFlips) != 1 {
		t.Fatalf("phase notifications = %d, want 1", len(phaseFlips))
	}
	if phaseFlips[0].Phase != PhaseBreak || phaseFlips[0].RemainingSec != 2 {
		t.Fatalf("flip snapshot = %+v", phaseFlips[0])
	}

	all, _ := s.ListSessions(store.SessionFilter{})
	if len(all) != 2 {
		t.Fatalf("sessions = %d, want closed work + open break", len(all))
	}
	open := openSessions(t, s)
	if len(open) != 1 || open[0].Kind != store.KindBreak {
		t.Fatalf("open = %+v", open)
	}
}

func TestTickNoopWhenIdleOrPaused(t *testing.T) {
	o, s := newTestOrchestrator(t, 5, 2)
	task := mustTask(t, s, "t")

	var ticks int
	o.SetOnTick(func(Snapshot) { ticks++ })

	if err := o.Tick(); err != nil {
		t.Fatal(err)
	}
	if ticks != 0 {
		t.Fatal("idle tick should not notify")
	}

	o.Start(task.ID)
	o.Pause()
	before := o.GetSnapshot()
	if err := o.Tick(); err != nil {
		t.Fatal(err)
	}
	if after := o.GetSnapshot(); after != before {
		t.Fatalf("paused tick mutated engine: %+v -> %+v", before, after)
	}
}

func TestPauseClosesSessionIdempotently(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	task := mustTask(t, s, "t")
	o.Start(task.ID)
	o.Tick()

	if err := o.Pause(); err != nil {
		t.Fatal(err)
	}
	if n := len(openSessions(t, s)); n != 0 {
		t.Fatalf("pause left %d open sessions", n)
	}
	all, _ := s.ListSessions(store.SessionFilter{})
	if len(all) != 1 {
		t.Fatalf("sessions = %d", len(all))
	}
	closedEnd := *all[0].EndTS

	// Second pause: no new close, no mutation.
	if err := o.Pause(); err != nil {
		t.Fatal(err)
	}
	all, _ = s.ListSessions(store.SessionFilter{})
	if len(all) != 1 || *all[0].EndTS != closedEnd {
		t.Fatal("second pause mutated the ledger")
	}
	if snap := o.GetSnapshot(); snap.IsRunning || snap.IsIdle {
		t.Fatalf("after pause: %+v", snap)
	}
}

func TestResumeOpensFreshSession(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	task := mustTask(t, s, "t")

	o.Start(task.ID)
	o.Tick()
	o.Pause()
	// Resume goes through Start on a paused engine.
	if err := o.Start(task.ID); err != nil {
		t.Fatal(err)
	}

	snap := o.GetSnapshot()
	if !snap.IsRunning || snap.RemainingSec != 9 {
		t.Fatalf("resume should keep the countdown: %+v", snap)
	}

	all, _ := s.ListSessions(store.SessionFilter{})
	if len(all) != 2 {
		t.Fatalf("pause/resume should produce two session records, got %d", len(all))
	}
	open := openSessions(t, s)
	if len(open) != 1 || open[0].Kind != store.KindWork {
		t.Fatalf("open = %+v", open)
	}
}

func TestStartWhileRunningIsReaffirmOnly(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	task := mustTask(t, s, "t")
	o.Start(task.ID)
	o.Tick()

	if err := o.Start(task.ID); err != nil {
		t.Fatal(err)
	}
	snap := o.GetSnapshot()
	if snap.RemainingSec != 9 {
		t.Fatalf("running start should not restart the countdown: %+v", snap)
	}
	all, _ := s.ListSessions(store.SessionFilter{})
	if len(all) != 1 {
		t.Fatalf("running start should not open a new session, got %d", len(all))
	}
}

func TestResetClosesSessionKeepsStatus(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	task := mustTask(t, s, "t")
	o.Start(task.ID)
	o.Tick()

	if err := o.Reset(); err != nil {
		t.Fatal(err)
	}
	if n := len(openSessions(t, s)); n != 0 {
		t.Fatalf("reset left %d open sessions", n)
	}
	snap := o.GetSnapshot()
	if !snap.IsIdle || snap.RemainingSec != 10 {
		t.Fatalf("after reset: %+v", snap)
	}
	got, _ := s.GetTask(task.ID)
	if got.Status != store.StatusDoing {
		t.Fatalf("reset must not touch task status, got %q", got.Status)
	}
}

func TestMarkDoneAndStop(t *testing.T) {
	o, s := newTestOrchestrator(t, 10, 3)
	active := mustTask(t, s, "active")
	other := mustTask(t, s, "other")
	o.Start(active.ID)

	// Marking a non-active task done leaves the timer running.
	if err := o.MarkDoneAndStop(other.ID); err != nil {
		t.Fatal(err)
	}
	if snap := o.GetSnapshot(); !snap.IsRunning {
		t.Fatal("timer should keep running for the active task")
	}
	got, _ := s.GetTask(other.ID)
	if got.Status != store.StatusDone {
		t.Fatalf("other status = %q", got.Status)
	}

	// Marking the active task done resets the timer and closes the session.
	if err := o.MarkDoneAndStop(active.ID); err != nil {
		t.Fatal(err)
	}
	if snap := o.GetSnapshot(); !snap.IsIdle {
		t.Fatalf("timer should reset: %+v", snap)
	}
	if n := len(openSessions(t, s)); n != 0 {
		t.Fatalf("open sessions = %d", n)
	}
	got, _ = s.GetTask(active.ID)
	if got.Status != store.StatusDone {
		t.Fatalf("active status = %q", got.Status)
	}
}

func TestMarkDoneUnknownTask(t *testing.T) {
	o, _ := newTestOrchestrator(t, 10, 3)
	if err := o.MarkDoneAndStop("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSingleOpenSessionAcrossFullRun(t *testing.T) {
	o, s := newTestOrchestrator(t, 2, 2)
	task := mustTask(t, s, "t")
	o.Start(task.ID)

	// Walk through several phase flips and pause/resume cycles, checking
	// the invariant at every step.
	check := func(step string) {
		if n := len(openSessions(t, s)); n > 1 {
			t.Fatalf("%s: %d open sessions", step, n)
		}
	}
	for i := 0; i < 9; i++ {
		o.Tick()
		check("tick")
	}
	o.Pause()
	check("pause")
	o.Start(task.ID)
	check("resume")
	o.Reset()
	check("reset")
	if n := len(openSessions(t, s)); n != 0 {
		t.Fatalf("after reset: %d open sessions", n)
	}
}

func TestDurationsComeFromInjectedClock(t *testing.T) {
	o, s := newTestOrchestrator(t, 5, 2)
	task := mustTask(t, s, "t")

	fixed := int64(50_000)
	o.now = func() int64 { fixed += 10; return fixed }

	o.Start(task.ID) // opens at 50_010
	o.Pause()        // closes at 50_020

	all, _ := s.ListSessions(store.SessionFilter{})
	if len(all) != 1 {
		t.Fatalf("sessions = %d", len(all))
	}
	if *all[0].DurationSec != 10 {
		t.Fatalf("duration = %d, want 10", *all[0].DurationSec)
	}
}

func TestCallbackSlotsReplaceAndTolerateNil(t *testing.T) {
	o, s := newTestOrchestrator(t, 5, 2)
	task := mustTask(t, s, "t")

	first, second := 0, 0
	o.SetOnStateChange(func(Snapshot) { first++ })
	o.SetOnStateChange(func(Snapshot) { second++ })

	// No subscribers on the other slots: must not panic.
	o.Start(task.ID)
	o.Tick()
	o.Pause()

	if first != 0 {
		t.Fatal("replaced subscriber still firing")
	}
	if second != 2 { // start + pause
		t.Fatalf("state changes = %d, want 2", second)
	}

	o.SetOnStateChange(nil)
	o.Reset() // nil subscriber: safe no-op
}

func TestSetActiveTaskIndependentOfRunState(t *testing.T) {
	o, s := newTestOrchestrator(t, 5, 2)
	task := mustTask(t, s, "t")

	o.SetActiveTask(task.ID)
	if o.ActiveTaskID() != task.ID {
		t.Fatal("active task not set")
	}
	if snap := o.GetSnapshot(); !snap.IsIdle {
		t.Fatal("setting the active task must not start the timer")
	}
}
