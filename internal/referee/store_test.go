package referee

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
)

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	return NewStore(Options{
		JSONPath: filepath.Join(dir, "referees.json"),
		CSVPath:  filepath.Join(dir, "referees.csv"),
		Logger:   logger.Discard(),
	})
}

func sampleRecords() []Record {
	target := DefaultTargetContext()
	rec := func(saison, first, last string) Record {
		r := Record{"Vorname": first, "Nachname": last, "Unbekannt": "ignored"}
		for _, key := range ContextKeys {
			r[key] = target.Get(key)
		}
		r["Saison"] = saison
		return r
	}
	return []Record{
		rec("Saison25/26", "Alex", "Muster"),
		rec("Saison24/25", "Other", "Ref"),
		rec("Saison25/26", "", ""),
		rec("Saison25/26", "Jamie", "Beispiel"),
		rec("Saison24/25", "", "Nachname"),
	}
}

func TestGroupRecords(t *testing.T) {
	groups := GroupRecords(sampleRecords())

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Context.Saison != "Saison25/26" || groups[1].Context.Saison != "Saison24/25" {
		t.Errorf("groups not in first-seen order: %q, %q", groups[0].Context.Saison, groups[1].Context.Saison)
	}
	want := []Entry{{"Alex", "Muster"}, {"Jamie", "Beispiel"}}
	if !reflect.DeepEqual(groups[0].Referees, want) {
		t.Errorf("first group = %+v, want %+v", groups[0].Referees, want)
	}
	want = []Entry{{"Other", "Ref"}, {"", "Nachname"}}
	if !reflect.DeepEqual(groups[1].Referees, want) {
		t.Errorf("second group = %+v, want %+v", groups[1].Referees, want)
	}
}

func TestGroupRecords_Idempotent(t *testing.T) {
	records := sampleRecords()
	first := GroupRecords(records)
	second := GroupRecords(records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping twice differs:\n%+v\n%+v", first, second)
	}
}

func TestGroupRecords_SkipsBlankNames(t *testing.T) {
	groups := GroupRecords([]Record{
		{"Saison": "A", "Vorname": "", "Nachname": ""},
		{"Saison": "B"},
	})
	if len(groups) != 0 {
		t.Errorf("groups = %+v, want none", groups)
	}
}

func TestGroupRecords_MissingContextColumns(t *testing.T) {
	groups := GroupRecords([]Record{{"Vorname": "Solo"}})
	if len(groups) != 1 || !groups[0].Context.IsZero() {
		t.Fatalf("groups = %+v, want one group with empty context", groups)
	}
}

func TestStore_Ensure(t *testing.T) {
	t.Run("writes defaults when no sources exist", func(t *testing.T) {
		dir := t.TempDir()
		store := newTestStore(t, dir)
		store.Ensure()

		groups, err := store.Load(store.JSONPath())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !reflect.DeepEqual(groups, DefaultGroups(DefaultTargetContext())) {
			t.Errorf("groups = %+v, want defaults", groups)
		}
	})

	t.Run("prefers CSV conversion", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "referees.csv"), csvHeader+"\nS,M,K,G,W,St,R,Casey,One\n")
		store := newTestStore(t, dir)
		store.Ensure()

		groups, _ := store.Load("")
		if len(groups) != 1 || groups[0].Referees[0].FirstName != "Casey" {
			t.Errorf("groups = %+v, want CSV content", groups)
		}
	})

	t.Run("falls back to defaults when CSV is broken", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "referees.csv"), ",,,\nx\n")
		store := newTestStore(t, dir)
		store.Ensure()

		groups, _ := store.Load("")
		if !reflect.DeepEqual(groups, store.Defaults()) {
			t.Errorf("groups = %+v, want defaults", groups)
		}
	})

	t.Run("log level of conversion failures", func(t *testing.T) {
		tests := []struct {
			name     string
			csv      string
			wantWarn bool
		}{
			{"missing CSV", "", false},
			{"empty header", ",,,\nx\n", true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dir := t.TempDir()
				if tt.csv != "" {
					writeFile(t, filepath.Join(dir, "referees.csv"), tt.csv)
				}
				var buf bytes.Buffer
				store := NewStore(Options{
					JSONPath: filepath.Join(dir, "referees.json"),
					CSVPath:  filepath.Join(dir, "referees.csv"),
					Logger:   logger.New(logger.LevelWarn, &buf),
				})
				store.Ensure()

				warned := strings.Contains(buf.String(), "Referee CSV conversion failed")
				if warned != tt.wantWarn {
					t.Errorf("warned = %v, want %v (log = %s)", warned, tt.wantWarn, buf.String())
				}
			})
		}
	})

	t.Run("leaves existing JSON alone", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "referees.json")
		writeFile(t, path, "[]")
		writeFile(t, filepath.Join(dir, "referees.csv"), csvHeader+"\nS,M,K,G,W,St,R,Casey,One\n")
		newTestStore(t, dir).Ensure()

		data, _ := os.ReadFile(path)
		if string(data) != "[]" {
			t.Errorf("JSON = %q, want untouched []", string(data))
		}
	})
}

func TestStore_Load(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir)

	tests := []struct {
		name    string
		content string
		want    []Group
	}{
		{"empty content", "   \n", []Group{}},
		{"non-array top level", `{"context": {}}`, []Group{}},
		{"empty array", "[]", []Group{}},
		{"invalid JSON", "not-json", DefaultGroups(DefaultTargetContext())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "alt.json")
			writeFile(t, path, tt.content)

			got, err := store.Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStore_Load_AlternatePathMissing(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	if _, err := store.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() on missing alternate path: expected error")
	}
}

func TestStore_Load_FallbackIsClone(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir)
	writeFile(t, store.JSONPath(), "{broken")

	first, err := store.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, _ := store.Load("")

	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(first, store.Defaults()) {
		t.Fatalf("fallback content differs from defaults")
	}

	first[0].Referees[0].FirstName = "Mutated"
	first[0].Context.Saison = "Mutated"
	if second[0].Referees[0].FirstName == "Mutated" || second[0].Context.Saison == "Mutated" {
		t.Error("two loads share the same underlying data")
	}
	if store.Defaults()[0].Referees[0].FirstName == "Mutated" {
		t.Error("load result aliases the store defaults")
	}
}

func TestStore_InjectedDefaults(t *testing.T) {
	dir := t.TempDir()
	custom := []Group{{Context: MatchContext{Saison: "X"}, Referees: []Entry{{"Eva", "Extra"}}}}
	store := NewStore(Options{
		JSONPath: filepath.Join(dir, "referees.json"),
		Defaults: custom,
		Logger:   logger.Discard(),
	})
	custom[0].Referees[0].FirstName = "Changed"

	names, err := store.FindForContext(MatchContext{Saison: "X"}, "")
	if err != nil {
		t.Fatalf("FindForContext() error = %v", err)
	}
	if !reflect.DeepEqual(names, []Name{{"Eva", "Extra"}}) {
		t.Errorf("FindForContext() = %v, want [[Eva Extra]]", names)
	}
}

func TestStore_FindForContext_ExactMatch(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir)
	target := DefaultTargetContext()
	other := target
	other.Runde = "RundeRunde 2"

	groups := []Group{
		{Context: target, Referees: []Entry{{"Casey", "One"}, {"Riley", "Two"}}},
		{Context: other, Referees: []Entry{{"Not", "Me"}}},
		{Context: target, Referees: []Entry{{"Sam", "Three"}}},
	}
	if err := store.Save("", groups); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	names, err := store.FindForContext(target, "")
	if err != nil {
		t.Fatalf("FindForContext() error = %v", err)
	}
	want := []Name{{"Casey", "One"}, {"Riley", "Two"}, {"Sam", "Three"}}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("FindForContext() = %v, want %v", names, want)
	}

	for _, key := range ContextKeys {
		t.Run("changed "+key, func(t *testing.T) {
			changed := target
			changed.Set(key, target.Get(key)+" ")
			got, err := store.FindForContext(changed, "")
			if err != nil {
				t.Fatalf("FindForContext() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("FindForContext() with %s changed = %v, want none", key, got)
			}
			if got == nil {
				t.Error("FindForContext() returned nil, want empty slice")
			}
		})
	}
}

func TestGroup_JSONShape(t *testing.T) {
	data, err := json.Marshal(DefaultGroups(DefaultTargetContext()))
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"context":{"Saison":"Saison25/26","Mannschaftsart":"MannschaftsartD-Junioren",` +
		`"Spielklasse":"SpielklasseKreisklasse C","Gebiet":"GebietKreis Berlin",` +
		`"Wettkampf":"WettkampfMeisterschaft","Staffel":"Staffelunt. D-Junioren Kreisklasse C St.1 Hin",` +
		`"Runde":"RundeRunde 1"},"referees":[{"Vorname":"Paul","Nachname":"Ziske"},` +
		`{"Vorname":"Gregor","Nachname":"Aschenbroich"}]}]`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}
}
