package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timer"
)

type settingsModel struct {
	store  *store.Store
	orch   *timer.Orchestrator
	width  int
	height int

	workSec  int
	breakSec int

	formActive bool
	form       *huh.Form

	formWork  *string
	formBreak *string
}

func newSettingsModel(s *store.Store, orch *timer.Orchestrator) settingsModel {
	work, brk := "", ""
	return settingsModel{
		store:     s,
		orch:      orch,
		workSec:   timer.DefaultWorkSec,
		breakSec:  timer.DefaultBreakSec,
		formWork:  &work,
		formBreak: &brk,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{
			workSec:  m.store.SettingInt("pomodoro_work", timer.DefaultWorkSec),
			breakSec: m.store.SettingInt("pomodoro_break", timer.DefaultBreakSec),
		}
	}
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		m.workSec = msg.workSec
		m.breakSec = msg.breakSec
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return m.showForm()
		}
	}
	return m, nil
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("enter a whole number of minutes")
	}
	if n < 1 || n > 180 {
		return fmt.Errorf("must be between 1 and 180")
	}
	return nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	*m.formWork = strconv.Itoa(secsToMin(m.workSec))
	*m.formBreak = strconv.Itoa(secsToMin(m.breakSec))

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work length (minutes)").
				Value(m.formWork).Validate(validateMinutes),
			huh.NewInput().Title("Break length (minutes)").
				Value(m.formBreak).Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.save()
	}
	return m, cmd
}

func (m settingsModel) save() tea.Cmd {
	workMin, _ := strconv.Atoi(*m.formWork)
	breakMin, _ := strconv.Atoi(*m.formBreak)
	workSec, breakSec := workMin*60, breakMin*60
	return func() tea.Msg {
		if err := m.store.SetSetting("pomodoro_work", strconv.Itoa(workSec)); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if err := m.store.SetSetting("pomodoro_break", strconv.Itoa(breakSec)); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		m.orch.SetDurations(workSec, breakSec)
		return statusMsg{text: fmt.Sprintf("Saved: %dm work / %dm break", workMin, breakMin)}
	}
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Edit Settings"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Settings"),
		"",
		fmt.Sprintf("  Work length:  %s", highlightStyle.Render(fmt.Sprintf("%d min", secsToMin(m.workSec)))),
		fmt.Sprintf("  Break length: %s", highlightStyle.Render(fmt.Sprintf("%d min", secsToMin(m.breakSec)))),
		"",
		mutedStyle.Render("  enter: edit"),
	)
	return panelStyle.Width(w).Render(content)
}

func secsToMin(secs int) int {
	return secs / 60
}
