package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timer"
)

// phaseEvents collects phase-change snapshots from the orchestrator
// callback. It lives behind a pointer so every copy of the model sees the
// same queue; Bubble Tea runs single-threaded so no locking is needed.
type phaseEvents struct {
	flips []timer.Snapshot
}

func (p *phaseEvents) push(s timer.Snapshot) {
	p.flips = append(p.flips, s)
}

func (p *phaseEvents) drain() []timer.Snapshot {
	out := p.flips
	p.flips = nil
	return out
}

type timerModel struct {
	store  *store.Store
	orch   *timer.Orchestrator
	events *phaseEvents
	width  int
	height int
}

func newTimerModel(s *store.Store, orch *timer.Orchestrator) timerModel {
	events := &phaseEvents{}
	orch.SetOnPhaseChange(events.push)
	return timerModel{
		store:  s,
		orch:   orch,
		events: events,
	}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if err := m.orch.Tick(); err != nil {
			return m, errorStatus(err)
		}
		for _, snap := range m.events.drain() {
			if snap.Phase == timer.PhaseBreak {
				return m, status("Work complete — take a break! \a")
			}
			return m, status("Break over — back to work! \a")
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			taskID, err := m.store.GetState(activeTaskKey)
			if err != nil {
				return m, errorStatus(err)
			}
			if taskID == "" {
				return m, status("Pick a task on the Tasks tab first (enter)")
			}
			if err := m.orch.Start(taskID); err != nil {
				return m, errorStatus(err)
			}
			return m, status("Timer running")
		case key.Matches(msg, keys.Pause):
			snap := m.orch.GetSnapshot()
			if snap.IsIdle {
				return m, nil
			}
			if snap.IsRunning {
				if err := m.orch.Pause(); err != nil {
					return m, errorStatus(err)
				}
				return m, status("Paused")
			}
			// Paused: resume through Start for the bound task.
			if err := m.orch.Start(m.orch.ActiveTaskID()); err != nil {
				return m, errorStatus(err)
			}
			return m, status("Resumed")
		case key.Matches(msg, keys.Reset):
			if err := m.orch.Reset(); err != nil {
				return m, errorStatus(err)
			}
			return m, status("Timer reset")
		case key.Matches(msg, keys.Done):
			taskID := m.orch.ActiveTaskID()
			if taskID == "" {
				return m, nil
			}
			if err := m.orch.MarkDoneAndStop(taskID); err != nil {
				return m, errorStatus(err)
			}
			return m, status("Task done, timer stopped")
		}
	}
	return m, nil
}

func (m timerModel) activeTaskTitle() string {
	id := m.orch.ActiveTaskID()
	if id == "" {
		return ""
	}
	task, err := m.store.GetTask(id)
	if err != nil {
		return ""
	}
	return task.Title
}

func (m timerModel) view() string {
	w := m.width - 4
	snap := m.orch.GetSnapshot()

	taskLine := mutedStyle.Render("No task bound — pick one on the Tasks tab")
	if title := m.activeTaskTitle(); title != "" {
		taskLine = highlightStyle.Render(title)
	}

	clock := formatClock(snap.RemainingSec)
	var display, phaseLabel, state string
	switch {
	case snap.IsIdle:
		display = countdownStyle.Width(w - 6).Render(clock)
		phaseLabel = mutedStyle.Render("Ready")
		state = mutedStyle.Render("Press s to start")
	case snap.Phase == timer.PhaseBreak:
		display = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(clock)
		phaseLabel = successStyle.Bold(true).Render("BREAK")
		state = m.runState(snap)
	default:
		display = countdownStyle.Width(w - 6).Render(clock)
		phaseLabel = warningStyle.Bold(true).Render("WORK")
		state = m.runState(snap)
	}

	var controls string
	switch {
	case snap.IsIdle:
		controls = mutedStyle.Render("s: start  q: quit")
	case snap.IsRunning:
		controls = mutedStyle.Render("space: pause  x: reset  d: done")
	default:
		controls = mutedStyle.Render("space: resume  x: reset  d: done")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Pomodoro"),
		"",
		taskLine,
		"",
		display,
		phaseLabel,
		"",
		state,
		"",
		controls,
	)
	return panelStyle.Width(w).Render(content)
}

func (m timerModel) runState(snap timer.Snapshot) string {
	if snap.IsRunning {
		return successStyle.Render("● running")
	}
	return warningStyle.Render("⏸ paused")
}

// footerIndicator is shown on every tab while the timer is live.
func (m timerModel) footerIndicator() string {
	snap := m.orch.GetSnapshot()
	if snap.IsIdle {
		return ""
	}
	label := fmt.Sprintf(" %s %s", strings.ToUpper(string(snap.Phase)), formatClock(snap.RemainingSec))
	if snap.IsRunning {
		return successStyle.Render("●" + label)
	}
	return warningStyle.Render("⏸" + label)
}
