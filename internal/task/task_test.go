package task

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	want := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.Local)
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"canonical", "2026-03-05 14:30:00", want},
		{"no seconds", "2026-03-05 14:30", want},
		{"t separator", "2026-03-05T14:30:00", want},
		{"trailing z", "2026-03-05T14:30:00Z", want},
		{"bare date", "2026-03-05", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local)},
		{"padded", "  2026-03-05 14:30:00  ", want},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDateTime(tc.input)
			if err != nil {
				t.Fatalf("ParseDateTime(%q) failed: %v", tc.input, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseDateTimeLocalFrame(t *testing.T) {
	got, err := ParseDateTime("2026-03-05 01:00:00")
	if err != nil {
		t.Fatalf("ParseDateTime failed: %v", err)
	}
	if got.Location() != time.Local {
		t.Errorf("Location = %v, want Local", got.Location())
	}
	// A parsed trigger must be directly comparable with local wall-clock
	// instants: range resolution and the views live in that frame.
	want := time.Date(2026, time.March, 5, 1, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("ParseDateTime = %v, want local %v", got, want)
	}
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a date", "2026-13-40 99:99:99", "05/03/2026"} {
		if _, err := ParseDateTime(input); err == nil {
			t.Errorf("ParseDateTime(%q) succeeded, want error", input)
		}
		var verr *ValidationError
		if _, err := ParseDateTime(input); !errors.As(err, &verr) {
			t.Errorf("ParseDateTime(%q) error is %T, want *ValidationError", input, err)
		}
	}
}

func TestValidate(t *testing.T) {
	schema := mustSchema(t, []string{ColTrigger, ColOutcome, ColImpact, ColBucket, ColP})
	trigger := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	bad := 11.0
	good := 7.5

	cases := []struct {
		name      string
		task      Task
		wantField string
	}{
		{"valid", Task{Trigger: trigger, Outcome: "x", Bucket: BucketThing, P: &good}, ""},
		{"zero trigger", Task{Outcome: "x"}, "trigger"},
		{"empty outcome", Task{Trigger: trigger, Outcome: "   "}, "outcome"},
		{"bad bucket", Task{Trigger: trigger, Outcome: "x", Bucket: "chores"}, "bucket"},
		{"score out of range", Task{Trigger: trigger, Outcome: "x", P: &bad}, "p"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate(schema)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate error is %T, want *ValidationError", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("Validate flagged %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestValidateIgnoresUndeclaredColumns(t *testing.T) {
	schema := DefaultSchema()
	trigger := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	bad := 42.0
	// Bucket and scores are not declared, so their values are not checked.
	task := Task{Trigger: trigger, Outcome: "x", Bucket: "whatever", P: &bad}
	if err := task.Validate(schema); err != nil {
		t.Fatalf("Validate failed on undeclared columns: %v", err)
	}
}

func TestEqualFullTuple(t *testing.T) {
	trigger := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	p := 3.0
	base := Task{Trigger: trigger, Outcome: "a", Impact: "b", Bucket: BucketThing, P: &p}

	same := base
	sameP := p
	same.P = &sameP
	if !base.Equal(same) {
		t.Error("tasks with equal field tuples should be Equal")
	}

	diff := base
	diff.Impact = "c"
	if base.Equal(diff) {
		t.Error("tasks differing in impact should not be Equal")
	}

	otherP := 4.0
	diffScore := base
	diffScore.P = &otherP
	if base.Equal(diffScore) {
		t.Error("tasks differing in a score should not be Equal")
	}

	extra := base
	extra.Extra = map[string]string{"note": "hi"}
	if base.Equal(extra) {
		t.Error("tasks differing in extra columns should not be Equal")
	}
}

func TestSortByTriggerStable(t *testing.T) {
	at := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{Trigger: at.Add(time.Hour), Outcome: "later"},
		{Trigger: at, Outcome: "first"},
		{Trigger: at, Outcome: "second"},
	}
	SortByTrigger(tasks)

	if tasks[0].Outcome != "first" || tasks[1].Outcome != "second" || tasks[2].Outcome != "later" {
		t.Errorf("sort order = %q, %q, %q; want first, second, later",
			tasks[0].Outcome, tasks[1].Outcome, tasks[2].Outcome)
	}
}

func TestScoreRoundTrip(t *testing.T) {
	v := 7.25
	got, err := ParseScore("p", FormatScore(&v))
	if err != nil {
		t.Fatalf("ParseScore failed: %v", err)
	}
	if got == nil || *got != v {
		t.Errorf("round trip = %v, want %v", got, v)
	}

	got, err = ParseScore("p", "")
	if err != nil {
		t.Fatalf("ParseScore on empty failed: %v", err)
	}
	if got != nil {
		t.Errorf("ParseScore on empty = %v, want nil", *got)
	}
}

func mustSchema(t *testing.T, cols []string) Schema {
	t.Helper()
	s, err := NewSchema(cols)
	if err != nil {
		t.Fatalf("NewSchema(%v) failed: %v", cols, err)
	}
	return s
}
