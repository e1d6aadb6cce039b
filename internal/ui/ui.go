package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tcal/internal/config"
	"tcal/internal/editor"
	"tcal/internal/storage"
	"tcal/internal/task"
)

const (
	leaderTimeout = 1000 * time.Millisecond
	deleteTimeout = 600 * time.Millisecond

	// seedHour is the default trigger time for newly created tasks.
	seedHour = 9
)

type view int

const (
	viewAgenda view = iota
	viewMonth
)

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayError
	overlayMessage
)

type (
	leaderExpireMsg   struct{}
	deleteExpireMsg   struct{}
	editorFinishedMsg struct{ err error }
)

// Model is the session state machine: one instance per session, constructed
// at start and torn down when the program exits. It owns the modal state,
// both view states, and the current store snapshot.
type Model struct {
	store *storage.Store
	cfg   config.Config
	keys  keyMap

	// tasks is the display snapshot: store contents sorted by trigger,
	// stable on ties. Views derive from it and never write back.
	tasks []task.Task

	view       view
	overlay    overlay
	overlayMsg string

	agenda agendaState
	month  monthState

	leaderArmed bool
	leaderAt    time.Time
	deleteArmed bool
	deleteAt    time.Time

	edit *editor.Session

	width  int
	height int

	fatal error

	// now is the wall clock; injected in tests.
	now func() time.Time
}

// New builds the session model around an already-loaded snapshot.
func New(store *storage.Store, cfg config.Config, tasks []task.Task) Model {
	m := Model{
		store: store,
		cfg:   cfg,
		keys:  defaultKeyMap(),
		view:  viewMonth,
		now:   time.Now,
	}
	m.setTasks(tasks)
	today := m.today()
	m.month = newMonthState(today)
	m.agenda.jumpToday(m.agendaRows(), m.now())
	return m
}

// Run loads the store and drives the session to completion. A corrupt data
// file is fatal: reported to the caller after the terminal is restored.
func Run(store *storage.Store, cfg config.Config) error {
	editor.SweepStale()

	tasks, err := store.Load()
	if err != nil {
		return err
	}

	program := tea.NewProgram(New(store, cfg, tasks), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case leaderExpireMsg:
		m.expireTimers()
		return m, nil
	case deleteExpireMsg:
		m.expireTimers()
		return m, nil
	case editorFinishedMsg:
		return m.finishEdit(msg.err)
	}
	return m, nil
}

// expireTimers disarms timed sub-states whose window has elapsed. Called on
// every input event and on the scheduled wake-ups, so a late follow-up key is
// always processed as a fresh normal-mode key.
func (m *Model) expireTimers() {
	now := m.now()
	if m.leaderArmed && now.Sub(m.leaderAt) > leaderTimeout {
		m.leaderArmed = false
	}
	if m.deleteArmed && now.Sub(m.deleteAt) > deleteTimeout {
		m.deleteArmed = false
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.expireTimers()

	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayError, overlayMessage:
		m.overlay = overlayNone
		return m, nil
	}

	if m.leaderArmed {
		return m.handleLeaderKey(msg)
	}

	if key.Matches(msg, m.keys.Leader) {
		m.leaderArmed = true
		m.leaderAt = m.now()
		return m, tea.Tick(leaderTimeout, func(time.Time) tea.Msg { return leaderExpireMsg{} })
	}

	if key.Matches(msg, m.keys.Delete) {
		return m.handleDeleteKey()
	}
	// Any non-delete key cancels a pending delete confirmation.
	m.deleteArmed = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		if m.view == viewMonth {
			m.month.exitTaskFocus()
		}
		return m, nil
	case key.Matches(msg, m.keys.Today):
		m.jumpToday()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit(false)
	}

	if m.view == viewAgenda {
		return m.handleAgendaKey(msg)
	}
	return m.handleMonthKey(msg)
}

func (m Model) handleLeaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.leaderArmed = false
	switch msg.String() {
	case "a":
		m.view = viewAgenda
	case "m":
		m.view = viewMonth
	case "n":
		return m.startEdit(true)
	}
	// Unrecognized follow-ups just cancel the leader window.
	return m, nil
}

func (m Model) handleDeleteKey() (tea.Model, tea.Cmd) {
	target := m.selectedTask()
	if target == nil {
		m.deleteArmed = false
		return m, nil
	}

	if m.deleteArmed {
		m.deleteArmed = false
		return m.performDelete(*target)
	}

	m.deleteArmed = true
	m.deleteAt = m.now()
	return m, tea.Tick(deleteTimeout, func(time.Time) tea.Msg { return deleteExpireMsg{} })
}

func (m Model) performDelete(target task.Task) (tea.Model, tea.Cmd) {
	if _, err := m.store.Delete(target); err != nil {
		return m.storeFailed(err)
	}
	m.reload()
	return m, nil
}

// selectedTask returns the task the destructive and edit commands act on,
// or nil when nothing is selected.
func (m *Model) selectedTask() *task.Task {
	switch m.view {
	case viewAgenda:
		return m.agenda.selected(m.agendaRows())
	case viewMonth:
		if m.month.focus != focusTasks {
			return nil
		}
		day := m.dayTasks(m.month.selected)
		if len(day) == 0 {
			return nil
		}
		idx := clamp(m.month.taskIndex, 0, len(day)-1)
		return &day[idx]
	}
	return nil
}

func (m *Model) jumpToday() {
	today := m.today()
	m.month.jumpTo(today)
	m.agenda.jumpToday(m.agendaRows(), m.now())
}

func (m *Model) today() time.Time {
	y, mo, d := m.now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, m.now().Location())
}

// setTasks installs a fresh snapshot in display order.
func (m *Model) setTasks(tasks []task.Task) {
	snapshot := make([]task.Task, len(tasks))
	copy(snapshot, tasks)
	task.SortByTrigger(snapshot)
	m.tasks = snapshot
}

// reload refreshes the snapshot after a mutation and re-clamps both views'
// selections. A load failure at this point means the data file went corrupt
// under us: fatal per the storage contract.
func (m *Model) reload() {
	tasks, err := m.store.Load()
	if err != nil {
		m.fatal = err
		return
	}
	m.setTasks(tasks)
	m.agenda.clamp(m.agendaRows())
	m.month.clampTaskIndex(m.dayTasks(m.month.selected))
}

func (m Model) storeFailed(err error) (tea.Model, tea.Cmd) {
	var corrupt *storage.CorruptError
	if errors.As(err, &corrupt) {
		m.fatal = err
		return m, tea.Quit
	}
	m.overlay = overlayError
	m.overlayMsg = err.Error()
	return m, nil
}

// dayTasks returns the snapshot's tasks for one calendar day, in display order.
func (m *Model) dayTasks(day time.Time) []task.Task {
	var out []task.Task
	for _, t := range m.tasks {
		if sameDay(t.Day(), day) {
			out = append(out, t)
		}
	}
	return out
}

// startEdit serializes the edit seeds and hands the terminal to the external
// editor. forceNew always seeds an empty creation template.
func (m Model) startEdit(forceNew bool) (tea.Model, tea.Cmd) {
	seeds, originals := m.editSeeds(forceNew)
	if len(seeds) == 0 {
		return m, nil
	}

	session, err := editor.Begin(seeds, originals)
	if err != nil {
		m.overlay = overlayError
		m.overlayMsg = err.Error()
		return m, nil
	}
	m.edit = session
	m.deleteArmed = false
	m.leaderArmed = false

	cmd := session.Command(m.cfg.EditorCommand())
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// editSeeds decides what goes into the transfer document and which pre-edit
// tuples serve as upsert match keys.
func (m *Model) editSeeds(forceNew bool) (seeds, originals []task.Task) {
	if forceNew {
		return []task.Task{m.creationSeed()}, nil
	}

	switch m.view {
	case viewAgenda:
		if sel := m.agenda.selected(m.agendaRows()); sel != nil {
			return []task.Task{*sel}, []task.Task{*sel}
		}
		return []task.Task{m.creationSeed()}, nil
	case viewMonth:
		day := m.dayTasks(m.month.selected)
		if len(day) == 0 {
			return []task.Task{m.creationSeed()}, nil
		}
		if m.month.focus == focusTasks {
			idx := clamp(m.month.taskIndex, 0, len(day)-1)
			return []task.Task{day[idx]}, []task.Task{day[idx]}
		}
		// Grid focus edits the whole day as a bulk document.
		return day, day
	}
	return nil, nil
}

// creationSeed is an empty template anchored at the focused date.
func (m *Model) creationSeed() task.Task {
	day := m.today()
	if m.view == viewMonth {
		day = m.month.selected
	}
	return task.Task{
		Trigger: time.Date(day.Year(), day.Month(), day.Day(), seedHour, 0, 0, 0, day.Location()),
	}
}

// finishEdit applies the round-trip result. Every failure path discards the
// edit and leaves the store untouched; the transfer document is removed
// regardless of outcome.
func (m Model) finishEdit(execErr error) (tea.Model, tea.Cmd) {
	session := m.edit
	m.edit = nil
	if session == nil {
		return m, nil
	}
	defer session.Cleanup()

	if execErr != nil {
		m.overlay = overlayError
		m.overlayMsg = "editor cancelled or failed"
		return m, nil
	}

	updated, err := session.Load()
	if err != nil {
		m.overlay = overlayError
		m.overlayMsg = err.Error()
		return m, nil
	}

	// Validate the whole document before the first write. A bad entry
	// anywhere discards the edit; the store never ends up half-applied.
	for i, t := range updated {
		if err := t.Validate(m.store.Schema()); err != nil {
			m.overlay = overlayError
			m.overlayMsg = fmt.Sprintf("edit discarded: entry %d: %v", i+1, err)
			return m, nil
		}
	}

	for i, t := range updated {
		var matchKey *task.Task
		if i < len(session.Originals) {
			matchKey = &session.Originals[i]
		}
		if _, err := m.store.Upsert(t, matchKey); err != nil {
			m.reload()
			return m.storeFailed(err)
		}
	}

	m.reload()
	m.deleteArmed = false
	m.agenda.selectTask(m.agendaRows(), updated[0])
	if m.view == viewMonth {
		m.month.taskIndex = 0
	}
	return m, nil
}

func (m Model) View() string {
	if m.fatal != nil {
		return fmt.Sprintf("storage error: %v\n", m.fatal)
	}

	var body string
	if m.view == viewAgenda {
		body = m.renderAgenda()
	} else {
		body = m.renderMonth()
	}

	out := body + "\n" + footerStyle.Render("? help")
	switch m.overlay {
	case overlayHelp:
		out = m.renderOverlay(helpLines)
	case overlayError, overlayMessage:
		out = m.renderOverlay([]string{m.overlayMsg, "", "press any key to dismiss"})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
