package core

import (
	"strings"
	"time"
)

// DateLayout is the wire form of a calendar day.
const DateLayout = "2006-01-02"

// Date is a calendar day in a specific location. The embedded time is local
// midnight of that day.
type Date struct {
	time.Time
}

// NewDate creates the calendar day year-month-day in loc. A nil loc means
// time.Local.
func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// DateOf returns the calendar day that contains t when observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return NewDate(y, m, d, loc)
}

// ParseDate parses a YYYY-MM-DD string as a calendar day in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, newValidationError(FieldDate, "is required")
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Date{}, newValidationError(FieldDate, "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

// String formats the day as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Start is the first instant of the day.
func (d Date) Start() time.Time {
	return d.Time
}

// End is the first instant of the following day. Days are half-open
// intervals [Start, End).
func (d Date) End() time.Time {
	return d.AddDate(0, 0, 1)
}

// Contains reports whether the instant t falls on this calendar day.
func (d Date) Contains(t time.Time) bool {
	return SameCalendarDay(t, d.Time, d.Location())
}

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

// SameCalendarDay reports whether a and b share year, month and day once
// both are converted to loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
