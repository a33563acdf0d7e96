package core

import (
	"math"
	"sort"
)

// DefaultWalkGoalMinutes is the daily walking target shown as progress.
const DefaultWalkGoalMinutes = 30

// Summary aggregates a set of activities.
type Summary struct {
	TotalWalkMinutes float64
	Meals            int
	Meds             int
}

// DaySummary is a Summary for one calendar day, with walk goal progress.
type DaySummary struct {
	Date Date
	Summary
	WalkGoalMinutes     float64
	WalkProgressPercent int
}

// Summarize reduces activities to walk minutes and meal/medication counts.
// Walk amounts are added in ascending order so the total does not depend
// on the order of the input.
func Summarize(activities []Activity) Summary {
	var s Summary
	walks := make([]float64, 0, len(activities))
	for _, a := range activities {
		switch a.Type {
		case Walk:
			walks = append(walks, a.Amount)
		case Meal:
			s.Meals++
		case Medication:
			s.Meds++
		}
	}
	sort.Float64s(walks)
	for _, m := range walks {
		s.TotalWalkMinutes += m
	}
	return s
}

// NewDaySummary builds the summary of day from activities already filtered
// to that day.
func NewDaySummary(day Date, activities []Activity, walkGoal float64) DaySummary {
	s := Summarize(activities)
	return DaySummary{
		Date:                day,
		Summary:             s,
		WalkGoalMinutes:     walkGoal,
		WalkProgressPercent: WalkProgress(s.TotalWalkMinutes, walkGoal),
	}
}

// WalkProgress is walked/goal as a rounded percentage capped at 100.
// A non-positive goal counts as reached.
func WalkProgress(walked, goal float64) int {
	if goal <= 0 {
		return 100
	}
	p := math.Round(walked / goal * 100)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}
