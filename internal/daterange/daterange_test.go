package daterange

import (
	"errors"
	"testing"
	"time"
)

// A Thursday, mid-afternoon.
var now = time.Date(2026, time.March, 5, 15, 42, 7, 0, time.UTC)

func TestResolveDayTokens(t *testing.T) {
	cases := []struct {
		token     string
		wantStart time.Time
	}{
		{"day_before_yesterday", time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)},
		{"today", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			r, err := Resolve(tc.token, now, time.Monday)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tc.token, err)
			}
			if !r.Start.Equal(tc.wantStart) {
				t.Errorf("Start = %v, want %v", r.Start, tc.wantStart)
			}
			if want := tc.wantStart.AddDate(0, 0, 1); !r.End.Equal(want) {
				t.Errorf("End = %v, want %v", r.End, want)
			}
		})
	}
}

func TestResolveThisWeek(t *testing.T) {
	r, err := Resolve("this_week", now, time.Monday)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	wantStart := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want Monday %v", r.Start, wantStart)
	}
	if want := wantStart.AddDate(0, 0, 7); !r.End.Equal(want) {
		t.Errorf("End = %v, want %v", r.End, want)
	}

	// A Sunday week start shifts the window back to the preceding Sunday.
	r, err = Resolve("this_week", now, time.Sunday)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	wantStart = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(wantStart) {
		t.Errorf("Sunday-start week Start = %v, want %v", r.Start, wantStart)
	}
}

func TestResolveMonthTokens(t *testing.T) {
	cases := []struct {
		token     string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"this_month",
			time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{"next_month",
			time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{"last_month",
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			r, err := Resolve(tc.token, now, time.Monday)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tc.token, err)
			}
			if !r.Start.Equal(tc.wantStart) || !r.End.Equal(tc.wantEnd) {
				t.Errorf("Resolve(%q) = [%v, %v), want [%v, %v)",
					tc.token, r.Start, r.End, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestResolveThisYear(t *testing.T) {
	r, err := Resolve("this_year", now, time.Monday)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.Start.Year() != 2026 || r.Start.Month() != time.January || r.Start.Day() != 1 {
		t.Errorf("Start = %v, want Jan 1 2026", r.Start)
	}
	if r.End.Year() != 2027 {
		t.Errorf("End = %v, want Jan 1 2027", r.End)
	}
}

func TestResolveAllIsUnbounded(t *testing.T) {
	r, err := Resolve("all", now, time.Monday)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !r.Start.IsZero() || !r.End.IsZero() {
		t.Errorf("Resolve(all) = [%v, %v), want unbounded", r.Start, r.End)
	}
	if !r.Contains(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("unbounded range should contain any instant")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	_, err := Resolve("fortnight", now, time.Monday)
	if !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Resolve error = %v, want ErrUnknownToken", err)
	}
	if Valid("fortnight") {
		t.Error("Valid(fortnight) = true, want false")
	}
	for _, token := range Tokens {
		if !Valid(token) {
			t.Errorf("Valid(%q) = false, want true", token)
		}
	}
}

func TestRangeContainsHalfOpen(t *testing.T) {
	r, err := Resolve("today", now, time.Monday)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !r.Contains(r.Start) {
		t.Error("start instant should be inside")
	}
	if r.Contains(r.End) {
		t.Error("end instant should be outside")
	}
	if !r.Contains(r.End.Add(-time.Second)) {
		t.Error("instant just before end should be inside")
	}
}

func TestOffsetApply(t *testing.T) {
	base := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		offset Offset
		want   time.Time
	}{
		{"minutes", Offset{Amount: 90, Unit: Minutes}, base.Add(90 * time.Minute)},
		{"hours back", Offset{Amount: -2, Unit: Hours}, base.Add(-2 * time.Hour)},
		{"days", Offset{Amount: 3, Unit: Days}, time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)},
		{"weeks", Offset{Amount: 2, Unit: Weeks}, time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC)},
		// AddDate normalizes Jan 31 + 1 month to Mar 3 in a non-leap year.
		{"months normalize", Offset{Amount: 1, Unit: Months}, base.AddDate(0, 1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.offset.Apply(base)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Apply = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := (Offset{Amount: 1, Unit: "fortnights"}).Apply(base); err == nil {
		t.Error("Apply with unknown unit succeeded, want error")
	}
}
