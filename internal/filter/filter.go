package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/match"
)

// DefaultTeamPrefix is the club prefix used to discover the user's own teams.
const DefaultTeamPrefix = "FC Hertha 03"

// ByTeam returns the games team plays in, home or away, in input order.
// The comparison is exact.
func ByTeam(games []match.UpcomingGame, team string) []match.UpcomingGame {
	filtered := make([]match.UpcomingGame, 0)
	for _, g := range games {
		if g.HasTeam(team) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// TeamsWithPrefix lists the distinct home and away teams whose name starts with
// prefix, sorted. An empty prefix lists every team.
func TeamsWithPrefix(games []match.UpcomingGame, prefix string) []string {
	seen := make(map[string]bool)
	for _, g := range games {
		for _, team := range []string{g.HomeTeam, g.AwayTeam} {
			if team != "" && strings.HasPrefix(team, prefix) {
				seen[team] = true
			}
		}
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// Filter represents game filtering criteria
type Filter struct {
	// Exact team name, home or away
	Team string `json:"team,omitempty"`

	// Case-insensitive substrings of either team name
	TeamContains []string `json:"team_contains,omitempty"`

	// Kickoff date range, inclusive
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Only games with a match-report link
	WithReportLink bool `json:"with_report_link,omitempty"`
}

// NewFilter creates a filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{TeamContains: []string{}}
}

// IsEmpty reports whether the filter would match every game.
func (f *Filter) IsEmpty() bool {
	return f.Team == "" &&
		len(f.TeamContains) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil &&
		!f.WeekendsOnly &&
		!f.WithReportLink
}

// Matches checks if a game matches all active criteria.
//
// Date criteria compare the kickoff day. Games whose kickoff cannot be parsed
// pass the date checks; the portal leaves the cell blank for unscheduled games
// and those should stay visible.
func (f *Filter) Matches(g match.UpcomingGame) bool {
	if f.IsEmpty() {
		return true
	}

	if f.Team != "" && !g.HasTeam(f.Team) {
		return false
	}

	if len(f.TeamContains) > 0 {
		home := strings.ToLower(g.HomeTeam)
		away := strings.ToLower(g.AwayTeam)
		matched := false
		for _, s := range f.TeamContains {
			s = strings.ToLower(s)
			if strings.Contains(home, s) || strings.Contains(away, s) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.WithReportLink && g.ReportLink == "" {
		return false
	}

	kickoff := match.ParseKickoff(g.Kickoff, time.UTC)
	if kickoff.IsZero() {
		return true
	}
	day := time.Date(kickoff.Year(), kickoff.Month(), kickoff.Day(), 0, 0, 0, 0, time.UTC)

	if f.DateFrom != nil && day.Before(truncateDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && day.After(truncateDay(*f.DateTo)) {
		return false
	}
	if f.WeekendsOnly {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			return false
		}
	}
	return true
}

// Apply returns the matching games. An empty filter returns games unchanged.
func (f *Filter) Apply(games []match.UpcomingGame) []match.UpcomingGame {
	if f.IsEmpty() {
		return games
	}
	filtered := make([]match.UpcomingGame, 0, len(games))
	for _, g := range games {
		if f.Matches(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "Team: FC Hertha 03 II | From: 01.10.2024 | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.Team != "" {
		parts = append(parts, "Team: "+f.Team)
	}
	if len(f.TeamContains) > 0 {
		parts = append(parts, fmt.Sprintf("Teams containing: %s", strings.Join(f.TeamContains, ", ")))
	}
	if f.DateFrom != nil {
		parts = append(parts, "From: "+f.DateFrom.Format(dfbDate))
	}
	if f.DateTo != nil {
		parts = append(parts, "To: "+f.DateTo.Format(dfbDate))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if f.WithReportLink {
		parts = append(parts, "With report link")
	}
	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		Team:           f.Team,
		WeekendsOnly:   f.WeekendsOnly,
		WithReportLink: f.WithReportLink,
		TeamContains:   append([]string{}, f.TeamContains...),
	}
	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}
	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}
	return clone
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
