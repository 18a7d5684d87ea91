package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
)

// DefaultDuration is the length of a game slot in the calendar.
const DefaultDuration = 2 * time.Hour

// Options controls calendar generation.
type Options struct {
	// Location the kickoff times are in. Defaults to time.Local.
	Location *time.Location
	Duration time.Duration
	// BaseURL resolves relative report links.
	BaseURL string
	Now     func() time.Time
}

// GenerateICS generates an iCalendar feed with one event per game. Games whose
// kickoff has no date are left out; games with a date but no time become all-day
// events.
func GenerateICS(games []match.UpcomingGame, opts Options) string {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//DFBnet Assist//dfbnet-assist//DE\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	stamp := formatICSTime(opts.Now())
	for _, g := range games {
		kickoff := match.ParseKickoff(g.Kickoff, opts.Location)
		if kickoff.IsZero() {
			continue
		}
		writeEvent(&ics, g, kickoff, stamp, opts)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, g match.UpcomingGame, kickoff time.Time, stamp string, opts Options) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@dfbnet-assist\r\n", uid(g)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))

	if match.HasKickoffTime(g.Kickoff) {
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(kickoff)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(kickoff.Add(opts.Duration))))
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", kickoff.Format("20060102")))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", kickoff.AddDate(0, 0, 1).Format("20060102")))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(g.HomeTeam+" - "+g.AwayTeam)))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(g))))

	if url, err := report.ReportURL(g.ReportLink, opts.BaseURL); err == nil {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", url))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

func uid(g match.UpcomingGame) string {
	if g.MatchNumber != "" {
		return g.MatchNumber
	}
	return strings.Join(strings.Fields(strings.ToLower(match.GameID(g))), "_")
}

func description(g match.UpcomingGame) string {
	var lines []string
	if g.MatchNumber != "" {
		lines = append(lines, "Spiel: "+g.MatchNumber)
	}
	if g.Matchday != "" {
		lines = append(lines, "Spieltag: "+g.Matchday)
	}
	if g.Status != "" {
		lines = append(lines, "Status: "+g.Status)
	}
	lines = append(lines, "Anstoß: "+g.Kickoff)
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
