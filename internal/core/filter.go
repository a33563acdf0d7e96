package core

import (
	"strings"
)

// Predicate selects activities from a store.
type Predicate func(Activity) bool

// All is the conjunction of preds. Nil entries are ignored and an empty
// list matches every activity.
func All(preds ...Predicate) Predicate {
	active := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(a Activity) bool {
		for _, p := range active {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// ForPet matches activities whose pet name equals name, ignoring case and
// surrounding whitespace. A blank name matches everything.
func ForPet(name string) Predicate {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return func(a Activity) bool {
		return strings.EqualFold(a.PetName, name)
	}
}

// OnDate matches activities that happened on the given calendar day.
func OnDate(d Date) Predicate {
	return func(a Activity) bool {
		return d.Contains(a.DateTime)
	}
}

// OfType matches activities of type t.
func OfType(t ActivityType) Predicate {
	return func(a Activity) bool {
		return a.Type == t
	}
}

// Filter returns the activities matching pred, preserving order.
func Filter(activities []Activity, pred Predicate) []Activity {
	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if pred == nil || pred(a) {
			out = append(out, a)
		}
	}
	return out
}
