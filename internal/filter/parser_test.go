package filter

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	now := time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	end := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 23, 59, 59, 0, time.UTC) }

	tests := []struct {
		name     string
		input    string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{"full range", "12.10.2024-20.10.2024", day(2024, 10, 12), end(2024, 10, 20), false},
		{"spaced range", "12.10.2024 - 20.10.", day(2024, 10, 12), end(2024, 10, 20), false},
		{"yearless range across new year", "20.12.-10.01.", day(2024, 12, 20), end(2025, 1, 10), false},
		{"start year from end", "28.12.-03.01.2025", day(2024, 12, 28), end(2025, 1, 3), false},
		{"single day", "01.11.2024", day(2024, 11, 1), end(2024, 11, 1), false},
		{"past month rolls over", "01.03.", day(2025, 3, 1), end(2025, 3, 1), false},
		{"german month", "Oktober", day(2024, 10, 1), end(2024, 10, 31), false},
		{"abbreviation with year", "Feb 2024", day(2024, 2, 1), end(2024, 2, 29), false},
		{"umlaut month", "März", day(2025, 3, 1), end(2025, 3, 31), false},
		{"reversed", "20.10.2024-12.10.2024", time.Time{}, time.Time{}, true},
		{"bad day", "31.02.2024", time.Time{}, time.Time{}, true},
		{"bad month name", "Brumaire", time.Time{}, time.Time{}, true},
		{"empty", "  ", time.Time{}, time.Time{}, true},
		{"garbage", "next week", time.Time{}, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDateRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !from.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(tt.wantTo) {
				t.Errorf("to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}
