// speddy/internal/scheduling/times.go

package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesOf converts a clock string to minutes since midnight. Accepts
// "HH:MM" and "HH:MM:SS" (postgres time columns come back with seconds).
func MinutesOf(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", clock)
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes since midnight back to "HH:MM".
func FormatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// DurationMinutes returns the length of a [start, end) slot in minutes.
func DurationMinutes(start, end string) (int, error) {
	s, err := MinutesOf(start)
	if err != nil {
		return 0, err
	}
	e, err := MinutesOf(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		return 0, fmt.Errorf("end %q before start %q", end, start)
	}
	return e - s, nil
}

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}
