// Package daterange maps named range tokens and relative offsets to concrete
// time intervals. Everything here is pure given a reference instant.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownToken is wrapped by Resolve for unrecognized range names.
var ErrUnknownToken = errors.New("unknown range token")

// Tokens lists every named range Resolve accepts, in rough chronological order.
var Tokens = []string{
	"day_before_yesterday",
	"yesterday",
	"today",
	"tomorrow",
	"this_week",
	"this_month",
	"next_month",
	"last_month",
	"this_year",
	"all",
}

// Range is a half-open interval [Start, End). A zero Start or End means
// unbounded on that side.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// Resolve maps a named token to a concrete interval relative to now.
// weekStart fixes which weekday opens this_week (typically Monday).
func Resolve(token string, now time.Time, weekStart time.Weekday) (Range, error) {
	day := midnight(now)

	switch token {
	case "day_before_yesterday":
		return dayRange(day.AddDate(0, 0, -2)), nil
	case "yesterday":
		return dayRange(day.AddDate(0, 0, -1)), nil
	case "today":
		return dayRange(day), nil
	case "tomorrow":
		return dayRange(day.AddDate(0, 0, 1)), nil
	case "this_week":
		start := startOfWeek(day, weekStart)
		return Range{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case "this_month":
		start := startOfMonth(day)
		return Range{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case "next_month":
		start := startOfMonth(day).AddDate(0, 1, 0)
		return Range{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case "last_month":
		end := startOfMonth(day)
		return Range{Start: end.AddDate(0, -1, 0), End: end}, nil
	case "this_year":
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		return Range{Start: start, End: start.AddDate(1, 0, 0)}, nil
	case "all":
		return Range{}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
}

// Valid reports whether token is a recognized range name.
func Valid(token string) bool {
	for _, t := range Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Unit is a relative-adjustment unit.
type Unit string

const (
	Minutes Unit = "minutes"
	Hours   Unit = "hours"
	Days    Unit = "days"
	Weeks   Unit = "weeks"
	Months  Unit = "months"
)

// ValidUnit reports whether u is a recognized adjustment unit.
func ValidUnit(u Unit) bool {
	switch u {
	case Minutes, Hours, Days, Weeks, Months:
		return true
	}
	return false
}

// Offset is a relative adjustment applied additively to a base timestamp,
// used by reschedule operations.
type Offset struct {
	Amount int
	Unit   Unit
}

// Apply shifts base by the offset. Month arithmetic follows time.AddDate.
func (o Offset) Apply(base time.Time) (time.Time, error) {
	switch o.Unit {
	case Minutes:
		return base.Add(time.Duration(o.Amount) * time.Minute), nil
	case Hours:
		return base.Add(time.Duration(o.Amount) * time.Hour), nil
	case Days:
		return base.AddDate(0, 0, o.Amount), nil
	case Weeks:
		return base.AddDate(0, 0, 7*o.Amount), nil
	case Months:
		return base.AddDate(0, o.Amount, 0), nil
	}
	return time.Time{}, fmt.Errorf("unsupported relative unit %q", o.Unit)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayRange(day time.Time) Range {
	return Range{Start: day, End: day.AddDate(0, 0, 1)}
}

func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

func startOfMonth(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}
