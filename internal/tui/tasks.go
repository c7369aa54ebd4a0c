package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomotrack/internal/priority"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timer"
)

// activeTaskKey is the app_state key naming the task bound to the timer.
const activeTaskKey = "active_task_id"

type taskRow struct {
	task     store.Task
	score    int
	blockers []string
}

type tasksModel struct {
	store  *store.Store
	orch   *timer.Orchestrator
	scorer *priority.Scorer
	width  int
	height int

	rows     []taskRow
	cursor   int
	showDone bool

	// Blocker picker: when linking, the next enter adds rows[pickCursor]
	// as a blocker of rows[cursor].
	linking    bool
	pickCursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle    *string
	formDue      *string
	formPriority *string
	formNotes    *string
}

func newTasksModel(s *store.Store, orch *timer.Orchestrator, scorer *priority.Scorer) tasksModel {
	title, due, prio, notes := "", "", string(store.PriorityP2), ""
	return tasksModel{
		store:        s,
		orch:         orch,
		scorer:       scorer,
		formTitle:    &title,
		formDue:      &due,
		formPriority: &prio,
		formNotes:    &notes,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// refresh reloads tasks and reorders them by descending priority score.
func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.store.ListTasks("")
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		scores, err := m.scorer.ComputeAll()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		var rows []taskRow
		for _, t := range tasks {
			if !m.showDone && t.Status == store.StatusDone {
				continue
			}
			blockers, _ := m.store.ListDeps(t.ID, store.DepBlocker)
			rows = append(rows, taskRow{task: t, score: scores[t.ID], blockers: blockers})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].score > rows[j].score
		})
		return tasksDataMsg{rows: rows}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.linking {
			return m.updateLinkPicker(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showNewTaskForm()
	case key.Matches(msg, keys.Enter):
		if len(m.rows) > 0 {
			t := m.rows[m.cursor].task
			if err := m.store.SetState(activeTaskKey, t.ID); err != nil {
				return m, errorStatus(err)
			}
			m.orch.SetActiveTask(t.ID)
			return m, status(fmt.Sprintf("Timer bound to %q", t.Title))
		}
	case key.Matches(msg, keys.Done):
		if len(m.rows) > 0 {
			if err := m.orch.MarkDoneAndStop(m.rows[m.cursor].task.ID); err != nil {
				return m, errorStatus(err)
			}
			return m, tea.Batch(m.refresh(), status("Task done"))
		}
	case key.Matches(msg, keys.Delete):
		if len(m.rows) > 0 {
			t := m.rows[m.cursor].task
			if t.ID == m.orch.ActiveTaskID() {
				m.orch.Reset()
				m.orch.SetActiveTask("")
				m.store.DeleteState(activeTaskKey)
			}
			if err := m.store.DeleteTask(t.ID); err != nil {
				return m, errorStatus(err)
			}
			return m, tea.Batch(m.refresh(), status("Task deleted"))
		}
	case key.Matches(msg, keys.Priority):
		if len(m.rows) > 0 {
			t := m.rows[m.cursor].task
			next := nextPriority(t.Priority)
			if err := m.store.SetTaskPriority(t.ID, next); err != nil {
				return m, errorStatus(err)
			}
			return m, m.refresh()
		}
	case key.Matches(msg, keys.Link):
		if len(m.rows) > 1 {
			m.linking = true
			m.pickCursor = 0
		}
	case key.Matches(msg, keys.Tab):
		m.showDone = !m.showDone
		return m, m.refresh()
	}
	return m, nil
}

func (m tasksModel) updateLinkPicker(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.linking = false
	case key.Matches(msg, keys.Up):
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickCursor < len(m.rows)-1 {
			m.pickCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.linking = false
		blocked := m.rows[m.cursor].task
		blocker := m.rows[m.pickCursor].task
		if err := m.store.AddDep(blocked.ID, blocker.ID, store.DepBlocker); err != nil {
			return m, errorStatus(err)
		}
		return m, tea.Batch(m.refresh(),
			status(fmt.Sprintf("%q now blocks on %q", blocked.Title, blocker.Title)))
	}
	return m, nil
}

func nextPriority(p store.Priority) store.Priority {
	switch p {
	case store.PriorityP2:
		return store.PriorityP1
	case store.PriorityP1:
		return store.PriorityP0
	default:
		return store.PriorityP2
	}
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formDue = ""
	*m.formPriority = string(store.PriorityP2)
	*m.formNotes = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Due date (yyyy-mm-dd, optional)").Value(m.formDue),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("P0 — urgent", string(store.PriorityP0)),
					huh.NewOption("P1 — soon", string(store.PriorityP1)),
					huh.NewOption("P2 — normal", string(store.PriorityP2)),
				).Value(m.formPriority),
			huh.NewText().Title("Notes").Value(m.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		return m, m.submitNewTask()
	}
	return m, cmd
}

func (m tasksModel) submitNewTask() tea.Cmd {
	title, due := *m.formTitle, *m.formDue
	prio, notes := store.Priority(*m.formPriority), *m.formNotes
	return func() tea.Msg {
		task, err := m.store.CreateTask(title)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if due != "" {
			if err := m.store.SetTaskDueDate(task.ID, due); err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		if prio != store.PriorityP2 {
			m.store.SetTaskPriority(task.ID, prio)
		}
		if notes != "" {
			m.store.SetTaskNotes(task.ID, notes)
		}
		return statusMsg{text: fmt.Sprintf("Created %q", task.Title)}
	}
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("New Task"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if m.linking {
		title = titleStyle.Render(fmt.Sprintf("Pick a blocker for %q", m.rows[m.cursor].task.Title))
	}

	if len(m.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-5s %-4s %-32s %-7s %-11s %s",
		"Score", "Pri", "Title", "Status", "Due", "Blockers")))

	cursor := m.cursor
	if m.linking {
		cursor = m.pickCursor
	}
	for i, row := range m.rows {
		marker := "  "
		style := normalItemStyle
		if i == cursor {
			marker = "> "
			style = selectedItemStyle
		}

		active := " "
		if row.task.ID == m.orch.ActiveTaskID() {
			active = successStyle.Render("●")
		}
		due := row.task.DueDate
		if due == "" {
			due = "-"
		}
		blockers := ""
		if n := len(row.blockers); n > 0 {
			blockers = warningStyle.Render(fmt.Sprintf("⛔ %d", n))
		}

		line := style.Render(fmt.Sprintf("%s%-5d %-4s %-32s %-7s %-11s",
			marker, row.score, row.task.Priority, truncate(row.task.Title, 32),
			row.task.Status, due))
		rows = append(rows, line+" "+active+" "+blockers)
	}

	rows = append(rows, "")
	hint := "  n: new  enter: bind timer  d: done  p: priority  b: blocker  D: delete  tab: show done"
	if m.linking {
		hint = "  enter: link  esc: cancel"
	}
	rows = append(rows, mutedStyle.Render(hint))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
}
