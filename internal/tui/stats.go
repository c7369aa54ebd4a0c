package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomotrack/internal/store"
)

type dayBar struct {
	date         string
	totalSeconds int64
	sessionCount int
}

type taskTotal struct {
	title        string
	totalSeconds int64
}

type statsModel struct {
	store  *store.Store
	width  int
	height int

	offset     int // 7-day blocks back from today (0 = current)
	todayTotal int64
	days       []dayBar
	taskTotals []taskTotal

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// dateRange returns the local-midnight bounds of the displayed 7-day window.
func (m statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	end := today.AddDate(0, 0, 1-7*m.offset)
	return end.AddDate(0, 0, -7), end
}

func (m statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		todayTotal, err := m.store.WorkSecondsToday()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		from, to := m.dateRange()
		totals, err := m.store.DailyWorkTotals(from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		var days []dayBar
		for _, t := range totals {
			days = append(days, dayBar{
				date:         t.Date,
				totalSeconds: t.TotalSeconds,
				sessionCount: t.SessionCount,
			})
		}

		tasks, err := m.store.ListTasks("")
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		var taskTotals []taskTotal
		for _, t := range tasks {
			secs, err := m.store.WorkSecondsForTask(t.ID, 0)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			if secs == 0 {
				continue
			}
			taskTotals = append(taskTotals, taskTotal{title: t.Title, totalSeconds: secs})
		}
		sort.SliceStable(taskTotals, func(i, j int) bool {
			return taskTotals[i].totalSeconds > taskTotals[j].totalSeconds
		})

		return statsDataMsg{todayTotal: todayTotal, days: days, taskTotals: taskTotals}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.todayTotal = msg.todayTotal
		m.days = msg.days
		m.taskTotals = msg.taskTotals
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]dayBar, len(m.days))
	for _, d := range m.days {
		byDate[d.date] = d
	}

	from, to := m.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		label := d.Format("Mon 02")
		value := barchart.BarValue{
			Name:  "",
			Value: 0,
			Style: lipgloss.NewStyle().Foreground(colorSubtle),
		}
		if day, ok := byDate[d.Format("2006-01-02")]; ok {
			value = barchart.BarValue{
				Name:  day.date,
				Value: float64(day.totalSeconds) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{value},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	from, to := m.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", dateLabel,
	)

	today := fmt.Sprintf("  Focused today: %s (%s)",
		highlightStyle.Render(formatSeconds(m.todayTotal)), formatHours(m.todayTotal))

	nav := mutedStyle.Render("  ←/→: older/newer week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", today, "", m.chart.View(), "",
			m.renderDayTable(w), "", m.renderTaskTable(w), "", nav,
		),
	)
}

func (m statsModel) renderDayTable(w int) string {
	if len(m.days) == 0 {
		return mutedStyle.Render("  No completed work sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s", "Date", "Focused", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 36))))
	for _, d := range m.days {
		rows = append(rows, fmt.Sprintf("  %-12s %10s %10d",
			d.date, formatSeconds(d.totalSeconds), d.sessionCount))
	}
	return strings.Join(rows, "\n")
}

func (m statsModel) renderTaskTable(w int) string {
	if len(m.taskTotals) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-32s %10s", "Task (all time)", "Focused")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	limit := len(m.taskTotals)
	if limit > 8 {
		limit = 8
	}
	for _, t := range m.taskTotals[:limit] {
		rows = append(rows, fmt.Sprintf("  %-32s %10s",
			truncate(t.title, 32), formatSeconds(t.totalSeconds)))
	}
	return strings.Join(rows, "\n")
}
