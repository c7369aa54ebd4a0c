package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewTimer
	viewStats
	viewSettings
)

var viewNames = []string{"Tasks", "Timer", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type tasksDataMsg struct {
	rows []taskRow
}

type statsDataMsg struct {
	todayTotal int64
	days       []dayBar
	taskTotals []taskTotal
}

type settingsDataMsg struct {
	workSec  int
	breakSec int
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders a countdown as mm:ss.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatSeconds(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(secs int64) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}
