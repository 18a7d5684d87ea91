package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/match"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 10, 14, 8, 0, 0, 0, time.UTC) }
	return s
}

var (
	game1 = match.UpcomingGame{MatchNumber: "640213001", HomeTeam: "FC Hertha 03 Zehlendorf D3", AwayTeam: "SC Staaken D2"}
	game2 = match.UpcomingGame{MatchNumber: "640213002", HomeTeam: "BFC Preussen D1", AwayTeam: "FC Hertha 03 Zehlendorf D2"}
	game3 = match.UpcomingGame{Kickoff: "Sa, 19.10.2024 12:00", HomeTeam: "Lichterfelder FC D1", AwayTeam: "FC Hertha 03 Zehlendorf D3"}
)

func TestSnapshotPath(t *testing.T) {
	s := newTestStorage(t)
	tests := []struct {
		team string
		want string
	}{
		{"", "snapshot.json"},
		{"   ", "snapshot.json"},
		{"FC Hertha 03 Zehlendorf II", "snapshot_fc-hertha-03-zehlendorf-ii.json"},
		{"Türkiyemspor / D1", "snapshot_turkiyemspor-d1.json"},
	}
	for _, tt := range tests {
		t.Run(tt.team, func(t *testing.T) {
			if got := filepath.Base(s.snapshotPath(tt.team)); got != tt.want {
				t.Errorf("snapshotPath(%q) = %q, want %q", tt.team, got, tt.want)
			}
		})
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	s := newTestStorage(t)
	snap, err := s.LoadSnapshot("")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if snap.Games == nil || len(snap.Games) != 0 {
		t.Errorf("LoadSnapshot() = %+v, want empty snapshot", snap)
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	s := newTestStorage(t)
	if err := os.WriteFile(s.snapshotPath(""), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadSnapshot(""); err == nil || !strings.Contains(err.Error(), "parsing snapshot") {
		t.Errorf("LoadSnapshot() error = %v, want parse error", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStorage(t)
	if err := s.CreateSnapshotFromGames([]match.UpcomingGame{game1, game3}, "FC Hertha 03 Zehlendorf D3"); err != nil {
		t.Fatalf("CreateSnapshotFromGames() error = %v", err)
	}

	snap, err := s.LoadSnapshot("FC Hertha 03 Zehlendorf D3")
	if err != nil {
		t.Fatal(err)
	}
	if snap.UpdatedAt != "2024-10-14T08:00:00Z" {
		t.Errorf("UpdatedAt = %q", snap.UpdatedAt)
	}
	if snap.Games["640213001"] != game1 {
		t.Errorf("game1 = %+v", snap.Games["640213001"])
	}
	if _, ok := snap.Games[match.GameID(game3)]; !ok {
		t.Errorf("game without number not stored under composite id: %v", snap.Games)
	}

	// The combined snapshot is separate.
	all, _ := s.LoadSnapshot("")
	if len(all.Games) != 0 {
		t.Errorf("combined snapshot has %d games, want 0", len(all.Games))
	}
}

func TestTrack(t *testing.T) {
	s := newTestStorage(t)

	fresh, err := s.Track([]match.UpcomingGame{game1, game2}, "")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("first run: %d new games, want 2", len(fresh))
	}

	fresh, err = s.Track([]match.UpcomingGame{game2, game3}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 1 || fresh[0] != game3 {
		t.Errorf("second run: new games = %+v, want game3", fresh)
	}

	// Games dropped from the results are forgotten.
	fresh, _ = s.Track([]match.UpcomingGame{game1}, "")
	if len(fresh) != 1 {
		t.Errorf("third run: %d new games, want game1 again", len(fresh))
	}
}

func TestGetGameByID(t *testing.T) {
	s := newTestStorage(t)
	if err := s.CreateSnapshotFromGames([]match.UpcomingGame{game1, game2}, ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		want    match.UpcomingGame
		wantErr bool
	}{
		{"found", "640213002", game2, false},
		{"not found", "999", match.UpcomingGame{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetGameByID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetGameByID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GetGameByID() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandHome("~/.local/share/dfbnet-assist")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, ".local/share/dfbnet-assist") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got, _ := ExpandHome("/tmp/x"); got != "/tmp/x" {
		t.Errorf("absolute path changed to %q", got)
	}
}
