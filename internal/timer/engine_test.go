package timer

import "testing"

func TestNewEngineIdle(t *testing.T) {
	e := NewEngine(1500, 300)
	snap := e.Snapshot()
	if !snap.IsIdle || snap.IsRunning {
		t.Fatalf("fresh engine should be idle and stopped: %+v", snap)
	}
	if snap.Phase != PhaseWork || snap.RemainingSec != 1500 {
		t.Fatalf("fresh engine should show a full work phase: %+v", snap)
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(0, -5)
	snap := e.Snapshot()
	if snap.RemainingSec != DefaultWorkSec {
		t.Fatalf("remaining = %d, want default %d", snap.RemainingSec, DefaultWorkSec)
	}
}

func TestStartBeginsWorkPhase(t *testing.T) {
	e := NewEngine(10, 3)
	e.Start()
	snap := e.Snapshot()
	if snap.Phase != PhaseWork || snap.RemainingSec != 10 {
		t.Fatalf("after start: %+v", snap)
	}
	if !snap.IsRunning || snap.IsIdle {
		t.Fatalf("after start: %+v", snap)
	}
}

func TestStartRestartsEvenWhenRunning(t *testing.T) {
	e := NewEngine(10, 3)
	e.Start()
	for i := 0; i < 4; i++ {
		e.Tick()
	}
	e.Start()
	if got := e.Snapshot().RemainingSec; got != 10 {
		t.Fatalf("restart should reload the work duration, got %d", got)
	}
}

func TestTickIgnoredWhenIdleOrPaused(t *testing.T) {
	e := NewEngine(10, 3)

	if e.Tick() {
		t.Fatal("idle tick should report no phase change")
	}
	if snap := e.Snapshot(); snap.RemainingSec != 10 {
		t.Fatalf("idle tick mutated state: %+v", snap)
	}

	e.Start()
	e.Tick()
	e.Pause()
	before := e.Snapshot()
	if e.Tick() {
		t.Fatal("paused tick should report no phase change")
	}
	if after := e.Snapshot(); after != before {
		t.Fatalf("paused tick mutated state: %+v -> %+v", before, after)
	}
}

func TestPauseResumeIgnoredWhenIdle(t *testing.T) {
	e := NewEngine(10, 3)
	e.Pause()
	e.Resume()
	if snap := e.Snapshot(); !snap.IsIdle || snap.IsRunning {
		t.Fatalf("pause/resume on idle engine should be no-ops: %+v", snap)
	}
}

func TestPhaseFlipWorkToBreak(t *testing.T) {
	e := NewEngine(3, 2)
	e.Start()

	if e.Tick() || e.Tick() {
		t.Fatal("no flip expected before the countdown hits zero")
	}
	if !e.Tick() {
		t.Fatal("third tick should flip the phase")
	}
	snap := e.Snapshot()
	if snap.Phase != PhaseBreak || snap.RemainingSec != 2 {
		t.Fatalf("after flip: %+v", snap)
	}

	// Break runs down and flips back.
	if e.Tick() {
		t.Fatal("no flip one second into the break")
	}
	if !e.Tick() {
		t.Fatal("break should flip back to work")
	}
	snap = e.Snapshot()
	if snap.Phase != PhaseWork || snap.RemainingSec != 3 {
		t.Fatalf("after second flip: %+v", snap)
	}
}

func TestFullPomodoroCountdown(t *testing.T) {
	e := NewEngine(1500, 300)
	e.Start()

	flips := 0
	for i := 0; i < 1500; i++ {
		if e.Tick() {
			flips++
			if i != 1499 {
				t.Fatalf("flip on tick %d, want only the 1500th", i+1)
			}
		}
	}
	if flips != 1 {
		t.Fatalf("flips = %d, want exactly 1", flips)
	}
	snap := e.Snapshot()
	if snap.Phase != PhaseBreak || snap.RemainingSec != 300 {
		t.Fatalf("after 1500 ticks: %+v", snap)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	e := NewEngine(10, 3)
	e.Start()
	e.Tick()
	e.Reset()

	snap := e.Snapshot()
	if !snap.IsIdle || snap.IsRunning {
		t.Fatalf("after reset: %+v", snap)
	}
	if snap.Phase != PhaseWork || snap.RemainingSec != 10 {
		t.Fatalf("reset should reload a full work phase: %+v", snap)
	}
}

func TestPauseResumeKeepsCountdown(t *testing.T) {
	e := NewEngine(10, 3)
	e.Start()
	e.Tick()
	e.Tick()
	e.Pause()
	e.Resume()
	if got := e.Snapshot().RemainingSec; got != 8 {
		t.Fatalf("remaining = %d, want 8", got)
	}
}

func TestSetDurations(t *testing.T) {
	e := NewEngine(10, 3)
	e.SetDurations(20, 6)
	if got := e.Snapshot().RemainingSec; got != 20 {
		t.Fatalf("idle engine should reload new work length, got %d", got)
	}

	e.Start()
	e.Tick()
	e.SetDurations(40, 8)
	if got := e.Snapshot().RemainingSec; got != 19 {
		t.Fatalf("running countdown should keep its remaining time, got %d", got)
	}

	// Drain the work phase; the flip should load the new break length.
	for e.Snapshot().Phase == PhaseWork {
		e.Tick()
	}
	if got := e.Snapshot().RemainingSec; got != 8 {
		t.Fatalf("flip should load the new break length, got %d", got)
	}
}

func TestSetDurationsNonPositive(t *testing.T) {
	e := NewEngine(10, 3)
	e.SetDurations(0, -1)
	if got := e.Snapshot().RemainingSec; got != DefaultWorkSec {
		t.Fatalf("non-positive lengths should fall back to defaults, got %d", got)
	}
}
