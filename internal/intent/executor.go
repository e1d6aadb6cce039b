package intent

import (
	"fmt"
	"strings"
	"time"

	"tcal/internal/daterange"
	"tcal/internal/storage"
	"tcal/internal/task"
)

// Result is the outcome of a successfully executed intent.
type Result struct {
	Message string
	Tasks   []task.Task
	Mutated bool
}

// Executor runs validated intents against the task store. Validation happens
// fully before any mutation; a failed intent leaves the store untouched.
type Executor struct {
	Store     *storage.Store
	WeekStart time.Weekday
	Now       func() time.Time
}

// NewExecutor wires an executor to a store.
func NewExecutor(store *storage.Store, weekStart time.Weekday) *Executor {
	return &Executor{Store: store, WeekStart: weekStart, Now: time.Now}
}

// Execute dispatches a parsed intent.
func (e *Executor) Execute(in Intent) (Result, error) {
	switch v := in.(type) {
	case Create:
		return e.create(v)
	case List:
		return e.list(v)
	case Reschedule:
		return e.reschedule(v)
	}
	return Result{}, fmt.Errorf("unsupported intent type %T", in)
}

func (e *Executor) create(in Create) (Result, error) {
	stored, err := e.Store.Upsert(in.Task, nil)
	if err != nil {
		return Result{}, err
	}
	msg := fmt.Sprintf("Created task %q at %s", stored.Outcome, task.FormatDateTime(stored.Trigger))
	if stored.Impact != "" {
		msg += fmt.Sprintf(" with impact %q", stored.Impact)
	}
	return Result{Message: msg, Tasks: []task.Task{stored}, Mutated: true}, nil
}

func (e *Executor) list(in List) (Result, error) {
	r, err := daterange.Resolve(in.Range, e.Now(), e.WeekStart)
	if err != nil {
		return Result{}, err
	}
	tasks, err := e.Store.QueryRange(r.Start, r.End, in.Keyword)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: formatList(tasks, in.Range, in.Keyword), Tasks: tasks}, nil
}

func (e *Executor) reschedule(in Reschedule) (Result, error) {
	tasks, err := e.Store.Load()
	if err != nil {
		return Result{}, err
	}

	matches := matchTasks(tasks, in.Target)
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("no tasks match %q", in.Target)
	}
	if len(matches) > 1 {
		return Result{}, fmt.Errorf("multiple tasks match %q: %s", in.Target, describeMatches(matches))
	}

	original := matches[0]
	var newTrigger time.Time
	if in.NewTrigger != nil {
		newTrigger = *in.NewTrigger
	} else if in.Offset != nil {
		newTrigger, err = in.Offset.Apply(original.Trigger)
		if err != nil {
			return Result{}, err
		}
	} else {
		return Result{}, ErrAmbiguousReschedule
	}

	updated := original
	updated.Trigger = newTrigger
	stored, err := e.Store.Upsert(updated, &original)
	if err != nil {
		return Result{}, err
	}

	verb := "Rescheduled"
	if in.Offset != nil {
		verb = "Adjusted"
	}
	msg := fmt.Sprintf("%s %q from %s to %s", verb, original.Outcome,
		task.FormatDateTime(original.Trigger), task.FormatDateTime(stored.Trigger))
	return Result{Message: msg, Tasks: []task.Task{stored}, Mutated: true}, nil
}

// matchTasks finds tasks whose outcome or impact contains the description,
// case-insensitively. Full-tuple identity means a duplicated row matches
// twice and reports as ambiguous.
func matchTasks(tasks []task.Task, description string) []task.Task {
	needle := strings.ToLower(description)
	var out []task.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Outcome), needle) ||
			strings.Contains(strings.ToLower(t.Impact), needle) {
			out = append(out, t)
		}
	}
	return out
}

func describeMatches(matches []task.Task) string {
	const limit = 5
	parts := make([]string, 0, limit)
	for i, t := range matches {
		if i == limit {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Outcome, task.FormatDateTime(t.Trigger)))
	}
	return strings.Join(parts, ", ")
}

func formatList(tasks []task.Task, rangeName, keyword string) string {
	pretty := strings.ReplaceAll(rangeName, "_", " ")
	if len(tasks) == 0 {
		if keyword != "" {
			return fmt.Sprintf("No tasks for %s matching %q.", pretty, keyword)
		}
		return fmt.Sprintf("No tasks for %s.", pretty)
	}

	header := fmt.Sprintf("Tasks for %s", pretty)
	if keyword != "" {
		header += fmt.Sprintf(" matching %q", keyword)
	}
	header += fmt.Sprintf(" (%d)", len(tasks))

	const shown = 10
	lines := []string{header}
	for i, t := range tasks {
		if i == shown {
			lines = append(lines, fmt.Sprintf("…and %d more", len(tasks)-shown))
			break
		}
		line := fmt.Sprintf("- %s %s", t.Trigger.Format("2006-01-02 15:04"), t.Outcome)
		if t.Impact != "" {
			line += " - " + t.Impact
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
