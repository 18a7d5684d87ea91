package match

import (
	"regexp"
	"strconv"
	"time"
)

// kickoffPattern matches "12.10.2024", "12.10.24" and an optional time after any
// separator, e.g. "Sa, 12.10.2024 10:30" or "12.10.2024 - 10:30 Uhr".
var kickoffPattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})(?:\D{1,6}(\d{1,2}):(\d{2}))?`)

// ParseKickoff reads a kickoff cell into a time in loc (nil means time.Local).
// Returns the zero time when no date is found.
func ParseKickoff(text string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	m := kickoffPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		// 31.02. and friends roll over; treat as unparseable.
		return time.Time{}
	}
	return t
}

// HasKickoffTime reports whether the kickoff text carries a time of day.
func HasKickoffTime(text string) bool {
	m := kickoffPattern.FindStringSubmatch(text)
	return m != nil && m[4] != ""
}
