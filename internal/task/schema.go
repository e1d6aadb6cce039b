package task

import (
	"fmt"
	"strings"
)

// Column names recognized by the model. Deployments declare a subset of these
// (plus free-form extras) in config; the storage file header records the
// declared set.
const (
	ColTrigger = "trigger"
	ColOutcome = "outcome"
	ColImpact  = "impact"
	ColBucket  = "bucket"
	ColP       = "p"
	ColQ       = "q"
	ColR       = "r"
)

// requiredColumns must appear in every deployment's column set.
var requiredColumns = []string{ColTrigger, ColOutcome, ColImpact}

// Schema is the declared, ordered column set of a deployment.
type Schema struct {
	columns []string
}

// DefaultSchema covers the minimal deployment: trigger, outcome, impact.
func DefaultSchema() Schema {
	return Schema{columns: append([]string(nil), requiredColumns...)}
}

// NewSchema builds a schema from a declared column list. The required columns
// must all be present; order is preserved as declared.
func NewSchema(columns []string) (Schema, error) {
	if len(columns) == 0 {
		return DefaultSchema(), nil
	}
	seen := make(map[string]struct{}, len(columns))
	cleaned := make([]string, 0, len(columns))
	for _, c := range columns {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			return Schema{}, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	for _, req := range requiredColumns {
		if _, ok := seen[req]; !ok {
			return Schema{}, fmt.Errorf("missing required column %q", req)
		}
	}
	return Schema{columns: cleaned}, nil
}

// Columns returns the declared column names in order.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Has reports whether the schema declares the column.
func (s Schema) Has(col string) bool {
	for _, c := range s.columns {
		if c == col {
			return true
		}
	}
	return false
}

// Values serializes a task into one field per declared column.
func (s Schema) Values(t Task) []string {
	out := make([]string, len(s.columns))
	for i, col := range s.columns {
		switch col {
		case ColTrigger:
			out[i] = FormatDateTime(t.Trigger)
		case ColOutcome:
			out[i] = t.Outcome
		case ColImpact:
			out[i] = t.Impact
		case ColBucket:
			out[i] = t.Bucket
		case ColP:
			out[i] = FormatScore(t.P)
		case ColQ:
			out[i] = FormatScore(t.Q)
		case ColR:
			out[i] = FormatScore(t.R)
		default:
			out[i] = t.Extra[col]
		}
	}
	return out
}

// Row parses one record's fields, positionally matched to the declared
// columns, into a Task. Unknown declared columns land in Extra.
func (s Schema) Row(fields []string) (Task, error) {
	if len(fields) != len(s.columns) {
		return Task{}, fmt.Errorf("have %d fields, schema declares %d columns", len(fields), len(s.columns))
	}
	var t Task
	for i, col := range s.columns {
		raw := fields[i]
		switch col {
		case ColTrigger:
			trigger, err := ParseDateTime(raw)
			if err != nil {
				return Task{}, err
			}
			t.Trigger = trigger
		case ColOutcome:
			t.Outcome = raw
		case ColImpact:
			t.Impact = raw
		case ColBucket:
			t.Bucket = raw
		case ColP, ColQ, ColR:
			v, err := ParseScore(col, raw)
			if err != nil {
				return Task{}, err
			}
			switch col {
			case ColP:
				t.P = v
			case ColQ:
				t.Q = v
			case ColR:
				t.R = v
			}
		default:
			if t.Extra == nil {
				t.Extra = make(map[string]string)
			}
			t.Extra[col] = raw
		}
	}
	return t, nil
}
