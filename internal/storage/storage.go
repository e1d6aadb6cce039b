package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tcal/internal/task"
)

// CorruptError means the data file could not be parsed against the declared
// column set. It aborts the whole load; a truncated task list must never be
// presented as complete.
type CorruptError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("corrupt data file %s (line %d): %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("corrupt data file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store owns the durable task collection: a flat CSV file whose first line is
// a header naming the declared columns. A single session assumes exclusive
// ownership of the file.
type Store struct {
	path   string
	schema task.Schema
}

// Open binds a store to its data file. The file is created lazily on first
// write; a missing file is an empty store, not an error.
func Open(path string, schema task.Schema) (*Store, error) {
	if path == "" {
		return nil, errors.New("data path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	return &Store{path: path, schema: schema}, nil
}

// Path returns the data file location.
func (s *Store) Path() string { return s.path }

// Schema returns the declared column set.
func (s *Store) Schema() task.Schema { return s.schema }

// Load reads every task in file order. The header must match the declared
// column set; any row that fails to parse aborts the load with *CorruptError.
func (s *Store) Load() ([]task.Task, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := s.checkHeader(records[0]); err != nil {
		return nil, &CorruptError{Path: s.path, Line: 1, Err: err}
	}

	tasks := make([]task.Task, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := s.schema.Row(rec)
		if err != nil {
			return nil, &CorruptError{Path: s.path, Line: i + 2, Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) checkHeader(header []string) error {
	cols := s.schema.Columns()
	if len(header) != len(cols) {
		return fmt.Errorf("header has %d columns, schema declares %d", len(header), len(cols))
	}
	for i, col := range cols {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return fmt.Errorf("header column %d is %q, want %q", i+1, header[i], col)
		}
	}
	return nil
}

// Upsert validates t, then either replaces the first row equal to *matchKey
// in place (preserving its position) or appends. It returns the normalized
// stored task. Nothing is written when validation fails.
func (s *Store) Upsert(t task.Task, matchKey *task.Task) (task.Task, error) {
	t = t.Normalize()
	if err := t.Validate(s.schema); err != nil {
		return task.Task{}, err
	}

	tasks, err := s.Load()
	if err != nil {
		return task.Task{}, err
	}

	replaced := false
	if matchKey != nil {
		for i := range tasks {
			if tasks[i].Equal(*matchKey) {
				tasks[i] = t
				replaced = true
				break
			}
		}
	}
	if !replaced {
		tasks = append(tasks, t)
	}

	if err := s.save(tasks); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Delete removes the first row whose full field tuple equals matchKey and
// reports whether anything was removed. Deleting a missing task is not an
// error; deletion is idempotent.
func (s *Store) Delete(matchKey task.Task) (bool, error) {
	tasks, err := s.Load()
	if err != nil {
		return false, err
	}
	for i := range tasks {
		if tasks[i].Equal(matchKey) {
			tasks = append(tasks[:i], tasks[i+1:]...)
			if err := s.save(tasks); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// QueryRange returns tasks whose trigger falls in [start, end), optionally
// restricted to those whose outcome or impact contains keyword
// (case-insensitive). Zero start or end means unbounded on that side.
// Results come back ascending by trigger, stable on ties.
func (s *Store) QueryRange(start, end time.Time, keyword string) ([]task.Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(keyword))

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !start.IsZero() && t.Trigger.Before(start) {
			continue
		}
		if !end.IsZero() && !t.Trigger.Before(end) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Outcome), needle) &&
			!strings.Contains(strings.ToLower(t.Impact), needle) {
			continue
		}
		out = append(out, t)
	}
	task.SortByTrigger(out)
	return out, nil
}

// save writes the whole set atomically: serialize to a temp file in the same
// directory, sync, then rename over the data file. Readers never observe a
// half-written file.
func (s *Store) save(tasks []task.Task) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.Write(s.schema.Columns()); err != nil {
		tmp.Close()
		return err
	}
	for _, t := range tasks {
		if err := w.Write(s.schema.Values(t)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}
