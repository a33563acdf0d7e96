package core

import (
	"strings"
	"time"
)

const (
	Walk       ActivityType = "walk"
	Meal       ActivityType = "meal"
	Medication ActivityType = "medication"
)

type (
	// ActivityType is the kind of pet-care event being logged.
	ActivityType string

	// Activity is a single logged pet-care event. Records are never mutated
	// once a store has accepted them.
	Activity struct {
		ID       string
		PetName  string
		Type     ActivityType
		Amount   float64 // minutes for walks, count for meals and medication
		DateTime time.Time
	}

	// ActivityRequest carries the caller's creation input. A nil field means
	// the caller did not send it.
	ActivityRequest struct {
		PetName  *string
		Type     *string
		Amount   *string // raw form, coerced with ParseAmount
		DateTime *string
	}

	// WalkReminder is emitted when a pet has not been walked by the cutoff.
	WalkReminder struct {
		PetName     string
		Date        Date
		Cutoff      time.Time
		WalkMinutes float64
	}
)

// ActivityTypes lists the accepted activity types in display order.
func ActivityTypes() []ActivityType {
	return []ActivityType{Walk, Meal, Medication}
}

// Valid reports whether t is one of the fixed activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case Walk, Meal, Medication:
		return true
	default:
		return false
	}
}

func (t ActivityType) String() string {
	return string(t)
}

// Build validates the request and produces the activity it describes,
// without an ID. Fields are checked in order petName, type, amount,
// dateTime and the first failure is returned as a *ValidationError.
// A missing dateTime is filled with now; wall-clock values without an
// offset are read in loc. The resulting DateTime is always UTC.
func (r ActivityRequest) Build(now time.Time, loc *time.Location) (Activity, error) {
	if r.PetName == nil || strings.TrimSpace(*r.PetName) == "" {
		return Activity{}, newValidationError(FieldPetName, "is required")
	}
	petName := strings.TrimSpace(*r.PetName)

	if r.Type == nil || strings.TrimSpace(*r.Type) == "" {
		return Activity{}, newValidationError(FieldType, "is required")
	}
	typ := ActivityType(strings.TrimSpace(*r.Type))
	if !typ.Valid() {
		return Activity{}, newValidationError(FieldType, "must be walk | meal | medication")
	}

	if r.Amount == nil {
		return Activity{}, newValidationError(FieldAmount, "is required")
	}
	amount, err := ParseAmount(*r.Amount)
	if err != nil {
		return Activity{}, newValidationError(FieldAmount, "must be a positive number")
	}

	at := now
	if r.DateTime != nil && strings.TrimSpace(*r.DateTime) != "" {
		at, err = ParseDateTime(*r.DateTime, loc)
		if err != nil {
			return Activity{}, newValidationError(FieldDateTime, "must be an ISO 8601 date-time")
		}
	}

	return Activity{
		PetName:  petName,
		Type:     typ,
		Amount:   amount,
		DateTime: at.UTC(),
	}, nil
}

// dateTimeLayouts are tried after RFC 3339; they carry no offset and are
// interpreted as wall-clock time in the configured location.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime parses an absolute timestamp. Values with an explicit offset
// or Z suffix keep it, and a bare YYYY-MM-DD is midnight UTC, as ISO 8601
// date-only forms are in browsers. Anything else is read as wall-clock time
// in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
