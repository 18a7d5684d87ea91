package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dfbDate = "02.01.2006"

var (
	// "12.10.2024-20.10.2024", "12.10.-20.10.2024", "12.10.2024 - 20.10."
	rangePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})?\s*-\s*(\d{1,2})\.(\d{1,2})\.(\d{4})?$`)
	// "12.10.2024" or "12.10."
	dayPattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})?$`)
	// "Oktober", "Okt 2024"
	monthPattern = regexp.MustCompile(`(?i)^([a-zä]+)\.?(?:\s+(\d{4}))?$`)
)

// ParseDateRange parses a German-style date range relative to now.
//
// Supported formats:
//   - "12.10.2024-20.10.2024" or "12.10.-20.10." (year optional on either side)
//   - "12.10.2024" or "12.10." (a single day)
//   - "Oktober", "Okt" or "Oktober 2024" (the whole month)
//
// A missing year is inferred: the current year, or next year when the month has
// already passed. A range whose end month precedes its start month ends next year.
// Times are in UTC; start at 00:00:00, end at 23:59:59.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := rangePattern.FindStringSubmatch(input); m != nil {
		from, err := buildDay(m[1], m[2], m[3], now)
		if err != nil {
			return nil, nil, err
		}
		to, err := buildDay(m[4], m[5], m[6], now)
		if err != nil {
			return nil, nil, err
		}
		if m[3] == "" && m[6] != "" {
			// The start year follows the end.
			year := to.Year()
			if from.Month() > to.Month() {
				year--
			}
			if from, err = buildDay(m[1], m[2], strconv.Itoa(year), now); err != nil {
				return nil, nil, err
			}
		}
		if m[6] == "" {
			// The end year follows the start.
			year := from.Year()
			if to.Month() < from.Month() {
				year++
			}
			if to, err = buildDay(m[4], m[5], strconv.Itoa(year), now); err != nil {
				return nil, nil, err
			}
		}
		to = endOfDay(to)
		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return &from, &to, nil
	}

	if m := dayPattern.FindStringSubmatch(input); m != nil {
		from, err := buildDay(m[1], m[2], m[3], now)
		if err != nil {
			return nil, nil, err
		}
		to := endOfDay(from)
		return &from, &to, nil
	}

	if m := monthPattern.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		if month == 0 {
			return nil, nil, fmt.Errorf("invalid month: %s", m[1])
		}
		year := yearForMonth(month, now)
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to := endOfDay(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use '12.10.2024-20.10.2024', '12.10.2024' or 'Oktober'")
}

func buildDay(dayText, monthText, yearText string, now time.Time) (time.Time, error) {
	day, _ := strconv.Atoi(dayText)
	month, _ := strconv.Atoi(monthText)
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month: %s", monthText)
	}
	year := yearForMonth(time.Month(month), now)
	if yearText != "" {
		year, _ = strconv.Atoi(yearText)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid day: %s.%s.", dayText, monthText)
	}
	return t, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// parseMonth converts a German or English month name or abbreviation to time.Month
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))

	months := map[string]time.Month{
		"jan": time.January, "januar": time.January, "january": time.January,
		"feb": time.February, "februar": time.February, "february": time.February,
		"mär": time.March, "mar": time.March, "märz": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"mai": time.May, "may": time.May,
		"jun": time.June, "juni": time.June, "june": time.June,
		"jul": time.July, "juli": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"okt": time.October, "oct": time.October, "oktober": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dez": time.December, "dec": time.December, "dezember": time.December, "december": time.December,
	}
	return months[name]
}

// yearForMonth returns now's year, or the next one if month has already passed.
func yearForMonth(month time.Month, now time.Time) int {
	year := now.Year()
	if month < now.Month() {
		year++
	}
	return year
}
