package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tcal/internal/task"
)

type focusTarget int

const (
	focusGrid focusTarget = iota
	focusTasks
)

// monthState is the grid view: a focused day, a selection into that day's
// task list, and a flag saying which of the two the keyboard drives.
type monthState struct {
	selected  time.Time
	taskIndex int
	focus     focusTarget
}

func newMonthState(today time.Time) monthState {
	return monthState{selected: today}
}

func (s *monthState) jumpTo(day time.Time) {
	s.selected = day
	s.taskIndex = 0
}

func (s *monthState) exitTaskFocus() {
	s.focus = focusGrid
}

func (s *monthState) clampTaskIndex(dayTasks []task.Task) {
	s.taskIndex = clamp(s.taskIndex, 0, max(0, len(dayTasks)-1))
	if len(dayTasks) == 0 {
		s.focus = focusGrid
	}
}

func (s *monthState) moveDay(days int) {
	s.selected = s.selected.AddDate(0, 0, days)
	s.taskIndex = 0
}

// moveMonth shifts the focused month, preserving the day-of-month and
// clamping to the target month's last day (Jan 31 -> Feb 28/29).
func (s *monthState) moveMonth(delta int) {
	s.selected = shiftMonthClamped(s.selected, delta, 0)
	s.taskIndex = 0
}

// moveYear shifts the focused year under the same day-clamping rule.
func (s *monthState) moveYear(delta int) {
	s.selected = shiftMonthClamped(s.selected, 0, delta)
	s.taskIndex = 0
}

func shiftMonthClamped(day time.Time, deltaMonths, deltaYears int) time.Time {
	y := day.Year() + deltaYears
	mIdx := int(day.Month()) - 1 + deltaMonths
	y += mIdx / 12
	mIdx %= 12
	if mIdx < 0 {
		mIdx += 12
		y--
	}
	month := time.Month(mIdx + 1)
	d := min(day.Day(), daysIn(y, month))
	return time.Date(y, month, d, 0, 0, 0, 0, day.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Model) handleMonthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.month.focus == focusGrid {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.month.moveDay(-1)
		case key.Matches(msg, m.keys.Right):
			m.month.moveDay(+1)
		case key.Matches(msg, m.keys.Down):
			m.month.moveDay(+7)
		case key.Matches(msg, m.keys.Up):
			m.month.moveDay(-7)
		case key.Matches(msg, m.keys.PrevMonth):
			m.month.moveMonth(-1)
		case key.Matches(msg, m.keys.NextMonth):
			m.month.moveMonth(+1)
		case key.Matches(msg, m.keys.PrevYear):
			m.month.moveYear(-1)
		case key.Matches(msg, m.keys.NextYear):
			m.month.moveYear(+1)
		case key.Matches(msg, m.keys.Tab):
			// Focus only moves into the task pane when there is something
			// to select.
			day := m.dayTasks(m.month.selected)
			if len(day) > 0 {
				m.month.focus = focusTasks
				m.month.clampTaskIndex(day)
			}
		}
		return m, nil
	}

	day := m.dayTasks(m.month.selected)
	switch {
	case key.Matches(msg, m.keys.Tab):
		m.month.exitTaskFocus()
	case key.Matches(msg, m.keys.Down):
		m.month.taskIndex = clamp(m.month.taskIndex+1, 0, max(0, len(day)-1))
	case key.Matches(msg, m.keys.Up):
		m.month.taskIndex = clamp(m.month.taskIndex-1, 0, max(0, len(day)-1))
	case key.Matches(msg, m.keys.PrevMonth):
		m.month.moveMonth(-1)
		m.month.clampTaskIndex(m.dayTasks(m.month.selected))
	case key.Matches(msg, m.keys.NextMonth):
		m.month.moveMonth(+1)
		m.month.clampTaskIndex(m.dayTasks(m.month.selected))
	}
	return m, nil
}

// monthWeeks lays out the focused month as whole weeks starting on the
// configured week-start day, including the adjacent months' spill-over days.
func (m Model) monthWeeks() [][]time.Time {
	sel := m.month.selected
	first := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, sel.Location())
	start := int(first.Weekday()) - int(m.cfg.WeekStartDay())
	if start < 0 {
		start += 7
	}
	cur := first.AddDate(0, 0, -start)

	var weeks [][]time.Time
	for {
		week := make([]time.Time, 7)
		for i := range week {
			week[i] = cur
			cur = cur.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
		if cur.Month() != sel.Month() && cur.After(first) {
			break
		}
	}
	return weeks
}

func (m Model) renderMonth() string {
	sel := m.month.selected
	today := m.today()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", sel.Month(), sel.Year())))
	b.WriteString("\n\n")

	const cellW = 7
	weekStart := m.cfg.WeekStartDay()
	for i := 0; i < 7; i++ {
		name := time.Weekday((int(weekStart) + i) % 7).String()[:3]
		b.WriteString(dimStyle.Render(pad(name, cellW)))
	}
	b.WriteString("\n")

	for _, week := range m.monthWeeks() {
		for _, day := range week {
			label := fmt.Sprintf("%2d", day.Day())
			if n := len(m.dayTasks(day)); n > 0 {
				label += fmt.Sprintf("(%d)", min(n, 99))
			}
			cell := pad(label, cellW)
			switch {
			case sameDay(day, sel):
				cell = selectedStyle.Render(cell)
			case sameDay(day, today):
				cell = todayStyle.Render(cell)
			case day.Month() != sel.Month():
				cell = dimStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDayPane())
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDayPane() string {
	day := m.dayTasks(m.month.selected)
	if len(day) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Tasks " + m.month.selected.Format("2006-01-02")))
	b.WriteString("\n")

	idx := clamp(m.month.taskIndex, 0, len(day)-1)
	for i, t := range day {
		line := fmt.Sprintf("%s %s", t.Trigger.Format("15:04"), t.Outcome)
		if m.month.focus == focusTasks && i == idx {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}
