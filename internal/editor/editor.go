// Package editor round-trips tasks through an external editor via a JSON
// transfer document. Parse or validation failures discard the edit without
// touching storage.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tcal/internal/task"
)

// ErrDiscarded wraps every reason an edit was thrown away: non-zero editor
// exit, malformed document, failed validation. The session returns to its
// pre-edit state in all cases.
var ErrDiscarded = errors.New("edit discarded")

const tempPattern = "tcal-edit-*.json"

// doc is the transfer form of a task. The loosely-typed document never leaves
// this package; it converts to task.Task immediately after parse.
type doc struct {
	Trigger string   `json:"trigger"`
	Outcome string   `json:"outcome"`
	Impact  string   `json:"impact"`
	Bucket  string   `json:"bucket,omitempty"`
	P       *float64 `json:"p,omitempty"`
	Q       *float64 `json:"q,omitempty"`
	R       *float64 `json:"r,omitempty"`
}

func toDoc(t task.Task) doc {
	return doc{
		Trigger: task.FormatDateTime(t.Trigger),
		Outcome: t.Outcome,
		Impact:  t.Impact,
		Bucket:  t.Bucket,
		P:       t.P,
		Q:       t.Q,
		R:       t.R,
	}
}

func (d doc) toTask() (task.Task, error) {
	if strings.TrimSpace(d.Trigger) == "" {
		return task.Task{}, &task.ValidationError{Field: task.ColTrigger, Reason: "missing"}
	}
	trigger, err := task.ParseDateTime(d.Trigger)
	if err != nil {
		return task.Task{}, err
	}
	if strings.TrimSpace(d.Outcome) == "" {
		return task.Task{}, &task.ValidationError{Field: task.ColOutcome, Reason: "cannot be empty"}
	}
	return task.Task{
		Trigger: trigger,
		Outcome: strings.TrimSpace(d.Outcome),
		Impact:  d.Impact,
		Bucket:  strings.TrimSpace(d.Bucket),
		P:       d.P,
		Q:       d.Q,
		R:       d.R,
	}, nil
}

// Session is one external-edit round trip: a private transfer document plus
// the pre-edit originals used as upsert match keys.
type Session struct {
	Path      string
	Originals []task.Task
}

// Begin writes the seed tasks to a private temporary transfer document.
// A single seed produces a single JSON object; several produce an array.
// Load accepts either shape, so the edited document's form does not have to
// match the seeded one.
func Begin(seeds []task.Task, originals []task.Task) (*Session, error) {
	if len(seeds) == 0 {
		return nil, errors.New("nothing to edit")
	}

	var payload any
	if len(seeds) == 1 {
		payload = toDoc(seeds[0])
	} else {
		docs := make([]doc, len(seeds))
		for i, t := range seeds {
			docs[i] = toDoc(t)
		}
		payload = docs
	}

	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Session{Path: f.Name(), Originals: originals}, nil
}

// Command builds the editor invocation: the configured command (split on
// whitespace to allow flags) with the transfer document path as the sole
// trailing argument.
func (s *Session) Command(editorCmd string) *exec.Cmd {
	parts := strings.Fields(editorCmd)
	if len(parts) == 0 {
		parts = []string{"vim"}
	}
	args := append(parts[1:], s.Path)
	return exec.Command(parts[0], args...)
}

// Load re-reads and parses the transfer document after the editor exits.
// It accepts a single object or an array of objects and returns fully
// validated tasks; any failure wraps ErrDiscarded.
func (s *Session) Load() ([]task.Task, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscarded, err)
	}
	return parseTransfer(raw)
}

func parseTransfer(raw []byte) ([]task.Task, error) {
	var docs []doc
	var one doc
	if err := json.Unmarshal(raw, &one); err == nil {
		docs = []doc{one}
	} else if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrDiscarded, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrDiscarded)
	}

	tasks := make([]task.Task, len(docs))
	for i, d := range docs {
		t, err := d.toTask()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrDiscarded, i+1, err)
		}
		tasks[i] = t
	}
	return tasks, nil
}

// Cleanup removes the transfer document. Safe to call on every exit path.
func (s *Session) Cleanup() {
	if s == nil || s.Path == "" {
		return
	}
	_ = os.Remove(s.Path)
}

// SweepStale removes transfer documents left behind by interrupted sessions.
// Called once at launch.
func SweepStale() {
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), tempPattern))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}
