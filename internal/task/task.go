package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the canonical trigger format used in storage and
// transfer documents.
const DateTimeLayout = "2006-01-02 15:04:05"

// Bucket values for deployments that declare the bucket column.
const (
	BucketPersonalDevelopment = "personal_development"
	BucketThing               = "thing"
	BucketEconomic            = "economic"
)

// Buckets lists the valid bucket values in display order.
var Buckets = []string{BucketPersonalDevelopment, BucketThing, BucketEconomic}

const (
	scoreMin = 0
	scoreMax = 10
)

// Task is the unit of storage. Identity is the full persisted field tuple;
// there is no surrogate key, and duplicate rows are legal.
type Task struct {
	Trigger time.Time
	Outcome string
	Impact  string

	// Deployment-variant fields. Only persisted when the schema declares them.
	Bucket string
	P      *float64
	Q      *float64
	R      *float64

	// Extra carries declared-but-unmodeled columns through load/save untouched.
	Extra map[string]string
}

// ValidationError reports a single field failing its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseDateTime parses a trigger timestamp. It accepts the canonical
// "YYYY-MM-DD HH:MM:SS" form plus ISO-8601 variants with a T separator,
// optional seconds, an optional trailing Z, and a bare date. Timestamps are
// wall-clock values in the local zone, the same frame range resolution and
// the views use.
func ParseDateTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "Z")
	v = strings.Replace(v, "T", " ", 1)

	layouts := []string{
		DateTimeLayout,
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:  "trigger",
		Reason: fmt.Sprintf("unrecognized datetime %q, expected YYYY-MM-DD HH:MM[:SS]", value),
	}
}

// FormatDateTime renders a trigger in the canonical storage format.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// Normalize returns a copy with the trigger truncated to whole seconds, the
// precision the storage format carries.
func (t Task) Normalize() Task {
	t.Trigger = t.Trigger.Truncate(time.Second)
	return t
}

// Validate checks the task against the declared schema. It returns a
// *ValidationError naming the first offending field.
func (t Task) Validate(s Schema) error {
	if t.Trigger.IsZero() {
		return &ValidationError{Field: "trigger", Reason: "missing timestamp"}
	}
	if strings.TrimSpace(t.Outcome) == "" {
		return &ValidationError{Field: "outcome", Reason: "cannot be empty"}
	}
	if s.Has(ColBucket) && t.Bucket != "" && !ValidBucket(t.Bucket) {
		return &ValidationError{
			Field:  "bucket",
			Reason: fmt.Sprintf("%q is not one of %s", t.Bucket, strings.Join(Buckets, ", ")),
		}
	}
	for _, sc := range []struct {
		col string
		val *float64
	}{{ColP, t.P}, {ColQ, t.Q}, {ColR, t.R}} {
		if !s.Has(sc.col) || sc.val == nil {
			continue
		}
		if *sc.val < scoreMin || *sc.val > scoreMax {
			return &ValidationError{
				Field:  sc.col,
				Reason: fmt.Sprintf("score %v outside [%d, %d]", *sc.val, scoreMin, scoreMax),
			}
		}
	}
	return nil
}

// ValidBucket reports whether b is a declared bucket value.
func ValidBucket(b string) bool {
	for _, known := range Buckets {
		if b == known {
			return true
		}
	}
	return false
}

// Equal reports full-tuple equality, the identity used for update and delete.
func (t Task) Equal(other Task) bool {
	if !t.Trigger.Equal(other.Trigger) ||
		t.Outcome != other.Outcome ||
		t.Impact != other.Impact ||
		t.Bucket != other.Bucket {
		return false
	}
	if !floatPtrEqual(t.P, other.P) || !floatPtrEqual(t.Q, other.Q) || !floatPtrEqual(t.R, other.R) {
		return false
	}
	if len(t.Extra) != len(other.Extra) {
		return false
	}
	for k, v := range t.Extra {
		if other.Extra[k] != v {
			return false
		}
	}
	return true
}

// Day returns the trigger's calendar day at midnight, used for grouping.
func (t Task) Day() time.Time {
	y, m, d := t.Trigger.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Trigger.Location())
}

// SortByTrigger stable-sorts tasks ascending by trigger, preserving file
// order on ties. Display order only; storage keeps file order.
func SortByTrigger(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Trigger.Before(tasks[j].Trigger)
	})
}

// FormatScore renders a score column value; empty when unset.
func FormatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ParseScore parses a score column value; empty means unset.
func ParseScore(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	return &v, nil
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
