package http

import (
	"strings"
	"time"

	"petcare/internal/core"
)

// recordTimeLayout renders instants in UTC with millisecond precision.
const recordTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type (
	activityJSON struct {
		ID       string  `json:"id"`
		PetName  string  `json:"petName"`
		Type     string  `json:"type"`
		Amount   float64 `json:"amount"`
		DateTime string  `json:"dateTime"`
	}

	summaryJSON struct {
		Date                string  `json:"date"`
		TotalWalkMinutes    float64 `json:"totalWalkMinutes"`
		Meals               int     `json:"meals"`
		Meds                int     `json:"meds"`
		WalkGoalMinutes     float64 `json:"walkGoalMinutes"`
		WalkProgressPercent int     `json:"walkProgressPercent"`
	}

	needsWalkJSON struct {
		ShouldPrompt bool    `json:"shouldPrompt"`
		WalkMinutes  float64 `json:"walkMinutes"`
	}
)

func toActivityJSON(a core.Activity) activityJSON {
	return activityJSON{
		ID:       a.ID,
		PetName:  a.PetName,
		Type:     string(a.Type),
		Amount:   a.Amount,
		DateTime: a.DateTime.UTC().Format(recordTimeLayout),
	}
}

func toActivityListJSON(acts []core.Activity) []activityJSON {
	out := make([]activityJSON, 0, len(acts))
	for _, a := range acts {
		out = append(out, toActivityJSON(a))
	}
	return out
}

func toSummaryJSON(s core.DaySummary) summaryJSON {
	return summaryJSON{
		Date:                s.Date.String(),
		TotalWalkMinutes:    s.TotalWalkMinutes,
		Meals:               s.Meals,
		Meds:                s.Meds,
		WalkGoalMinutes:     s.WalkGoalMinutes,
		WalkProgressPercent: s.WalkProgressPercent,
	}
}

// summaryCacheKey is "date|pet" with the pet lowercased; "" means every pet.
func summaryCacheKey(day core.Date, pet *string) string {
	name := ""
	if pet != nil {
		name = strings.ToLower(strings.TrimSpace(*pet))
	}
	return day.String() + "|" + name
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func uptime(since time.Time) string {
	return time.Since(since).Truncate(time.Second).String()
}
