package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned by ParseAmount for anything that is not a
// finite number greater than zero.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount coerces a raw amount to a number.
//
// It accepts plain decimals with either a dot (12.5) or a single comma
// (12,5) as separator and exponent notation. Blank input, NaN, infinities
// and values <= 0 are rejected.
//
// Examples:
//
//	ParseAmount("15")   -> 15, nil
//	ParseAmount("2,5")  -> 2.5, nil
//	ParseAmount("0")    -> 0, ErrInvalidAmount
//	ParseAmount("walk") -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
