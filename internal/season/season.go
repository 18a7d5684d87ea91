// Package season computes DFBnet season labels and date strings.
//
// A season runs from July to June. On 14.10.2024 the current season is "2425"
// (short, as used in the portal's context values) or "2024/2025" (full).
package season

import (
	"fmt"
	"time"
)

// DateLayout is the dd.mm.yyyy layout the Spielsuche form expects.
const DateLayout = "02.01.2006"

// StartMonth is the first month of a season.
const StartMonth = time.July

// StartYear returns the calendar year in which the season containing t began.
func StartYear(t time.Time) int {
	if t.Month() < StartMonth {
		return t.Year() - 1
	}
	return t.Year()
}

// Short returns the four-digit season label for t, e.g. "2425".
func Short(t time.Time) string {
	start := StartYear(t)
	return fmt.Sprintf("%02d%02d", start%100, (start+1)%100)
}

// Full returns the season label for t, e.g. "2024/2025".
func Full(t time.Time) string {
	start := StartYear(t)
	return fmt.Sprintf("%d/%d", start, start+1)
}

// ContextValue returns the Saison value used in referee contexts, e.g. "Saison24/25".
func ContextValue(t time.Time) string {
	start := StartYear(t)
	return fmt.Sprintf("Saison%02d/%02d", start%100, (start+1)%100)
}

// FormatDate renders t as dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a dd.mm.yyyy date in loc (nil means time.Local).
func ParseDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want dd.mm.yyyy: %w", text, err)
	}
	return t, nil
}

// DefaultSearchDate is the "to" date filled into the search form so every planned
// game is listed.
func DefaultSearchDate() string {
	return FormatDate(time.Date(2050, time.October, 1, 0, 0, 0, 0, time.UTC))
}
