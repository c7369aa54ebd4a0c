package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/pomotrack/internal/priority"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timer"
	"github.com/sadopc/pomotrack/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	workSec := s.SettingInt("pomodoro_work", timer.DefaultWorkSec)
	breakSec := s.SettingInt("pomodoro_break", timer.DefaultBreakSec)
	orch := timer.NewOrchestrator(s, s, workSec, breakSec)

	// Rebind the task the timer was on last run, if it still exists.
	if taskID, err := s.GetState("active_task_id"); err == nil && taskID != "" {
		if _, err := s.GetTask(taskID); err == nil {
			orch.SetActiveTask(taskID)
		} else {
			s.DeleteState("active_task_id")
		}
	}

	scorer := priority.NewScorer(s)

	app := tui.NewApp(s, orch, scorer)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
