package catalog

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		entries []Entry
		key     string
		want    string
		ok      bool
	}{
		{TeamCategories, "herren_u40_11er", "Herren Ü40 (11er)", true},
		{TeamCategories, "e_junioren", "E-Junioren", true},
		{CompetitionTypes, "futsal", "Futsal-Ligabetrieb", true},
		{CompetitionTypes, "herren", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Label(tt.entries, tt.key)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Label(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCatalogsUnique(t *testing.T) {
	for name, entries := range map[string][]Entry{
		"team categories":   TeamCategories,
		"competition types": CompetitionTypes,
	} {
		seen := make(map[string]bool)
		for _, e := range entries {
			if seen[e.Key] {
				t.Errorf("%s: duplicate key %q", name, e.Key)
			}
			seen[e.Key] = true
		}
	}
	if len(TeamCategories) != 30 || len(CompetitionTypes) != 12 {
		t.Errorf("sizes = %d, %d; want 30, 12", len(TeamCategories), len(CompetitionTypes))
	}
}

func TestAll_ReturnsCopies(t *testing.T) {
	all := All()
	all.TeamCategories[0].Label = "changed"
	if TeamCategories[0].Label == "changed" {
		t.Error("All() shares the backing array")
	}
	if keys := Keys(CompetitionTypes); keys[0] != "auswahl_freundschaftsspiel" {
		t.Errorf("Keys()[0] = %q", keys[0])
	}
}
