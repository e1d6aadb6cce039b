package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tcal/internal/task"
)

// agendaState is the list view: a selection over the filtered, trigger-sorted
// snapshot plus a scroll window and a cycling bucket filter ("" = no filter).
type agendaState struct {
	index  int
	scroll int
	bucket string
}

// agendaRows is the agenda's visible sequence: the display snapshot narrowed
// by the active bucket filter.
func (m *Model) agendaRows() []task.Task {
	if m.agenda.bucket == "" {
		return m.tasks
	}
	var out []task.Task
	for _, t := range m.tasks {
		if t.Bucket == m.agenda.bucket {
			out = append(out, t)
		}
	}
	return out
}

func (a *agendaState) selected(rows []task.Task) *task.Task {
	if len(rows) == 0 {
		return nil
	}
	idx := clamp(a.index, 0, len(rows)-1)
	return &rows[idx]
}

func (a *agendaState) clamp(rows []task.Task) {
	a.index = clamp(a.index, 0, len(rows)-1)
}

func (a *agendaState) move(rows []task.Task, delta int) {
	if len(rows) == 0 {
		a.index = 0
		return
	}
	a.index = clamp(a.index+delta, 0, len(rows)-1)
}

// jumpToday selects the first task at or after now, or the last task when
// everything is in the past.
func (a *agendaState) jumpToday(rows []task.Task, now time.Time) {
	if len(rows) == 0 {
		a.index = 0
		return
	}
	for i, t := range rows {
		if !t.Trigger.Before(now) {
			a.index = i
			return
		}
	}
	a.index = len(rows) - 1
}

// selectTask moves the selection to the row equal to t, best effort.
func (a *agendaState) selectTask(rows []task.Task, t task.Task) {
	for i, row := range rows {
		if row.Equal(t) {
			a.index = i
			return
		}
	}
	a.clamp(rows)
}

// jumpDay moves the selection to the previous or next day group. Backwards
// lands on the first task of the target day, forwards on the first task
// after the current day.
func (a *agendaState) jumpDay(rows []task.Task, dir int) {
	if len(rows) == 0 {
		return
	}
	cur := clamp(a.index, 0, len(rows)-1)
	curDay := rows[cur].Day()

	if dir < 0 {
		for i := cur - 1; i >= 0; i-- {
			if rows[i].Day().Before(curDay) {
				target := rows[i].Day()
				for j := 0; j <= i; j++ {
					if sameDay(rows[j].Day(), target) {
						a.index = j
						return
					}
				}
			}
		}
		return
	}
	for i := cur + 1; i < len(rows); i++ {
		if rows[i].Day().After(curDay) {
			a.index = i
			return
		}
	}
}

// cycleBucket advances the filter through no-filter and each bucket value,
// keeping the previously selected task selected when it survives the filter.
func (m *Model) cycleBucket() {
	prev := m.agenda.selected(m.agendaRows())

	order := append([]string{""}, task.Buckets...)
	for i, b := range order {
		if b == m.agenda.bucket {
			m.agenda.bucket = order[(i+1)%len(order)]
			break
		}
	}

	rows := m.agendaRows()
	if prev != nil {
		m.agenda.selectTask(rows, *prev)
		if m.agenda.index >= len(rows) {
			m.agenda.index = 0
		}
	} else {
		m.agenda.index = 0
	}
	m.agenda.clamp(rows)
}

func (m Model) handleAgendaKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.agendaRows()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.agenda.move(rows, +1)
	case key.Matches(msg, m.keys.Up):
		m.agenda.move(rows, -1)
	case key.Matches(msg, m.keys.Left):
		m.agenda.jumpDay(rows, -1)
	case key.Matches(msg, m.keys.Right):
		m.agenda.jumpDay(rows, +1)
	case key.Matches(msg, m.keys.Tab):
		if m.store.Schema().Has(task.ColBucket) {
			m.cycleBucket()
		}
	}
	return m, nil
}

func (m Model) renderAgenda() string {
	rows := m.agendaRows()

	var b strings.Builder
	title := "Agenda"
	if m.agenda.bucket != "" {
		title += " [" + m.agenda.bucket + "]"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No tasks yet. Press i to create."))
		return b.String()
	}

	bodyH := m.height - 4
	if bodyH < 1 {
		bodyH = len(rows)
	}

	idx := clamp(m.agenda.index, 0, len(rows)-1)
	scroll := clamp(m.agenda.scroll, 0, max(0, len(rows)-bodyH))
	if idx < scroll {
		scroll = idx
	} else if idx >= scroll+bodyH {
		scroll = idx - bodyH + 1
	}

	for i := scroll; i < len(rows) && i < scroll+bodyH; i++ {
		t := rows[i]
		line := fmt.Sprintf("%s  %s", t.Trigger.Format("2006-01-02 15:04"), t.Outcome)
		if t.Impact != "" {
			line += dimStyle.Render("  ("+t.Impact+")")
		}
		if i == idx {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
