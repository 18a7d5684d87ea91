// Package filter narrows extracted games down to the ones a user cares about.
//
// The common case is the team filter: list the club's own teams (names starting
// with a prefix such as "FC Hertha 03") and keep the games one of them plays in.
// Filter adds date ranges, weekend-only and team-substring criteria on top.
//
// Example usage:
//
//	teams := filter.TeamsWithPrefix(games, filter.DefaultTeamPrefix)
//	mine := filter.ByTeam(games, teams[0])
//
//	from, to, _ := filter.ParseDateRange("01.10.2024-31.10.2024", time.Now())
//	f := &filter.Filter{DateFrom: from, DateTo: to, WeekendsOnly: true}
//	weekend := f.Apply(mine)
package filter
