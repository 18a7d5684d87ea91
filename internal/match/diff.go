package match

import "time"

// Snapshot records the games seen by one extraction, keyed by GameID.
type Snapshot struct {
	Games     map[string]UpcomingGame `json:"games"`
	UpdatedAt string                  `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{Games: make(map[string]UpcomingGame)}
}

// CreateSnapshot builds a snapshot of games stamped with updatedAt.
func CreateSnapshot(games []UpcomingGame, updatedAt time.Time) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	for _, g := range games {
		snap.Games[GameID(g)] = g
	}
	return snap
}

// GameID identifies a game across extractions: the match number when the portal
// shows one, otherwise kickoff and both teams.
func GameID(g UpcomingGame) string {
	if g.MatchNumber != "" {
		return g.MatchNumber
	}
	return g.Kickoff + "|" + g.HomeTeam + "|" + g.AwayTeam
}

// Diff returns the games in current that previous does not know, in current order.
func Diff(previous *Snapshot, current []UpcomingGame) []UpcomingGame {
	if previous == nil {
		previous = NewSnapshot()
	}
	fresh := make([]UpcomingGame, 0)
	for _, g := range current {
		if _, seen := previous.Games[GameID(g)]; !seen {
			fresh = append(fresh, g)
		}
	}
	return fresh
}
