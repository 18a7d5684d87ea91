package match

import (
	"fmt"
	"strings"
)

// UpcomingGame is one row of the results table.
type UpcomingGame struct {
	MatchNumber    string `json:"match_number"`
	Kickoff        string `json:"kickoff"`
	Matchday       string `json:"matchday"`
	HomeTeam       string `json:"home_team"`
	AwayTeam       string `json:"away_team"`
	Result         string `json:"result"`
	Status         string `json:"status"`
	ReportLink     string `json:"report_link"`
	ReportLinkText string `json:"report_link_text"`
}

// Summary renders the game on one line, e.g.
// "Match #123 | Sa, 12.10.2024 10:00 | ST 5 | Home vs Away | geplant".
func (g UpcomingGame) Summary() string {
	parts := make([]string, 0, 6)
	if g.MatchNumber != "" {
		parts = append(parts, "Match #"+g.MatchNumber)
	}
	if g.Kickoff != "" {
		parts = append(parts, g.Kickoff)
	}
	if g.Matchday != "" {
		parts = append(parts, "ST "+g.Matchday)
	}
	parts = append(parts, fmt.Sprintf("%s vs %s", g.HomeTeam, g.AwayTeam))
	if g.Result != "" {
		parts = append(parts, "Result "+g.Result)
	}
	if g.Status != "" {
		parts = append(parts, g.Status)
	}
	return strings.Join(parts, " | ")
}

// HasTeam reports whether team plays at home or away in g.
func (g UpcomingGame) HasTeam(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}
