package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/fsx"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
)

// DefaultDataDir is used when no data directory is configured.
const DefaultDataDir = "~/.local/share/dfbnet-assist"

// Storage handles persistence of game snapshots
type Storage struct {
	dataDir string
	now     func() time.Time
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		now:     time.Now,
	}, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// snapshotPath returns the snapshot file for a team filter ("" for all games).
func (s *Storage) snapshotPath(team string) string {
	slug := teamSlug(team)
	if slug == "" {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", slug))
}

// teamSlug turns "FC Hertha 03 Zehlendorf II" into "fc-hertha-03-zehlendorf-ii".
func teamSlug(team string) string {
	words := make([]string, 0)
	for _, w := range strings.Fields(team) {
		if n := match.NormalizeHeader(w); n != "" {
			words = append(words, n)
		}
	}
	return strings.Join(words, "-")
}

// LoadSnapshot loads a snapshot from disk. A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot(team string) (*match.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(team))
	if err != nil {
		if os.IsNotExist(err) {
			return match.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot match.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Games == nil {
		snapshot.Games = make(map[string]match.UpcomingGame)
	}
	return &snapshot, nil
}

// SaveSnapshot stamps and saves a snapshot.
func (s *Storage) SaveSnapshot(snapshot *match.Snapshot, team string) error {
	snapshot.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if err := fsx.WriteJSON(s.snapshotPath(team), snapshot); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// CreateSnapshotFromGames creates and saves a snapshot from a list of games
func (s *Storage) CreateSnapshotFromGames(games []match.UpcomingGame, team string) error {
	return s.SaveSnapshot(match.CreateSnapshot(games, s.now()), team)
}

// Track compares games with the previous snapshot for team, saves games as the new
// snapshot and returns the games that were not seen before.
func (s *Storage) Track(games []match.UpcomingGame, team string) ([]match.UpcomingGame, error) {
	previous, err := s.LoadSnapshot(team)
	if err != nil {
		return nil, err
	}
	fresh := match.Diff(previous, games)
	if err := s.CreateSnapshotFromGames(games, team); err != nil {
		return nil, err
	}
	return fresh, nil
}

// GetGameByID retrieves a game from the combined snapshot.
func (s *Storage) GetGameByID(id string) (match.UpcomingGame, error) {
	snapshot, err := s.LoadSnapshot("")
	if err != nil {
		return match.UpcomingGame{}, fmt.Errorf("loading snapshot: %w", err)
	}
	if g, ok := snapshot.Games[id]; ok {
		return g, nil
	}
	return match.UpcomingGame{}, fmt.Errorf("game not found: %s", id)
}
