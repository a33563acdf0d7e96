package core

import (
	"time"
)

// DefaultCutoffHour is the local hour after which an unwalked pet prompts.
const DefaultCutoffHour = 18

// NeedsWalk is the outcome of evaluating the reminder rule.
type NeedsWalk struct {
	ShouldPrompt bool
	WalkMinutes  float64
	Cutoff       time.Time
}

// NeedsWalkRule decides whether the user should be reminded to walk a pet.
type NeedsWalkRule struct {
	CutoffHour int
	Location   *time.Location
}

// NewNeedsWalkRule returns a rule with the given cutoff hour in loc.
func NewNeedsWalkRule(cutoffHour int, loc *time.Location) (NeedsWalkRule, error) {
	if cutoffHour < 0 || cutoffHour > 23 {
		return NeedsWalkRule{}, newValidationError(FieldCutoffHour, "must be between 0 and 23")
	}
	if loc == nil {
		loc = time.Local
	}
	return NeedsWalkRule{CutoffHour: cutoffHour, Location: loc}, nil
}

func (r NeedsWalkRule) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Cutoff is CutoffHour:00:00 local time on day.
func (r NeedsWalkRule) Cutoff(day Date) time.Time {
	loc := r.location()
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, r.CutoffHour, 0, 0, 0, loc)
}

// Evaluate applies the rule for day at instant now. Only the current day can
// be evaluated; any other day yields ErrNotToday.
func (r NeedsWalkRule) Evaluate(now time.Time, day Date, walkMinutes float64) (NeedsWalk, error) {
	if !SameCalendarDay(now, day.Time, r.location()) {
		return NeedsWalk{}, ErrNotToday
	}
	cutoff := r.Cutoff(day)
	return NeedsWalk{
		ShouldPrompt: !now.Before(cutoff) && walkMinutes == 0,
		WalkMinutes:  walkMinutes,
		Cutoff:       cutoff,
	}, nil
}

// Clock returns the current instant. Tests substitute fixed clocks.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}
