package workbench

import (
	"errors"
	"fmt"
)

// ErrUnknownUnit is returned for a time unit outside seconds..weeks.
var ErrUnknownUnit = errors.New("unit must be one of seconds, minutes, hours, days, weeks")

var unitSeconds = map[string]int{
	"seconds": 1,
	"minutes": 60,
	"hours":   3600,
	"days":    3600 * 24,
	"weeks":   3600 * 24 * 7,
}

// largest first
var unitOrder = []string{"weeks", "days", "hours", "minutes", "seconds"}

// Units returns the accepted unit names from smallest to largest.
func Units() []string {
	out := make([]string, len(unitOrder))
	for i, u := range unitOrder {
		out[len(unitOrder)-1-i] = u
	}
	return out
}

// UnitsToSeconds converts count units into seconds.
func UnitsToSeconds(count int, unit string) (int, error) {
	n, ok := unitSeconds[unit]
	if !ok {
		return 0, fmt.Errorf("%q: %w", unit, ErrUnknownUnit)
	}
	return count * n, nil
}

// SecondsToCountAndUnits expresses seconds in the largest unit that divides it
// evenly, so 600 becomes (10, "minutes").
func SecondsToCountAndUnits(seconds int) (int, string) {
	for _, unit := range unitOrder {
		if seconds%unitSeconds[unit] == 0 {
			return seconds / unitSeconds[unit], unit
		}
	}
	return seconds, "seconds"
}
