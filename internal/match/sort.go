package match

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// SortOrder names a game ordering.
type SortOrder string

const (
	SortByKickoff  SortOrder = "kickoff"
	SortByMatchday SortOrder = "matchday"
	SortByHome     SortOrder = "home"
)

// SortOrders lists the accepted orders.
var SortOrders = []SortOrder{SortByKickoff, SortByMatchday, SortByHome}

// ParseSortOrder maps a flag value to a SortOrder.
func ParseSortOrder(s string) (SortOrder, bool) {
	o := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortOrders {
		if o == known {
			return o, true
		}
	}
	return "", false
}

// SortGames sorts games in place. The sort is stable, unknown orders leave
// games untouched.
func SortGames(games []UpcomingGame, order SortOrder) {
	switch order {
	case SortByKickoff:
		sort.SliceStable(games, func(i, j int) bool {
			return kickoffBefore(games[i], games[j])
		})
	case SortByMatchday:
		sort.SliceStable(games, func(i, j int) bool {
			mi, oki := matchday(games[i])
			mj, okj := matchday(games[j])
			if oki && okj && mi != mj {
				return mi < mj
			}
			if oki != okj {
				// Numbered matchdays first.
				return oki
			}
			return kickoffBefore(games[i], games[j])
		})
	case SortByHome:
		sort.SliceStable(games, func(i, j int) bool {
			hi, hj := strings.ToLower(games[i].HomeTeam), strings.ToLower(games[j].HomeTeam)
			if hi != hj {
				return hi < hj
			}
			return kickoffBefore(games[i], games[j])
		})
	}
}

// kickoffBefore orders by kickoff; games without a parsable kickoff go last.
func kickoffBefore(a, b UpcomingGame) bool {
	ta := ParseKickoff(a.Kickoff, time.UTC)
	tb := ParseKickoff(b.Kickoff, time.UTC)

	switch {
	case !ta.IsZero() && !tb.IsZero():
		return ta.Before(tb)
	case !ta.IsZero():
		return true
	case !tb.IsZero():
		return false
	}
	return strings.ToLower(a.HomeTeam) < strings.ToLower(b.HomeTeam)
}

func matchday(g UpcomingGame) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(g.Matchday))
	return n, err == nil
}
