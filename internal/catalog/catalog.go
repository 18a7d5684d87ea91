// Package catalog lists the fixed option values of the Spielsuche form.
package catalog

import "sort"

// Entry is one selectable option: a stable key and the label the portal shows.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TeamCategories are the Mannschaftsart options, in portal order.
var TeamCategories = []Entry{
	{"herren_u70", "Herren Ü70"},
	{"herren_u60", "Herren Ü60"},
	{"herren_u60_freizeit", "Herren Ü60 Freizeit/Betrieb"},
	{"herren_u50", "Herren Ü50"},
	{"herren_u50_freizeit", "Herren Ü50 Freizeit/Betrieb"},
	{"herren_u40", "Herren Ü40"},
	{"herren_u40_11er", "Herren Ü40 (11er)"},
	{"herren_u40_freizeit", "Herren Ü40 Freizeit/Betrieb"},
	{"herren_u32", "Herren Ü32"},
	{"herren_u32_freizeit", "Herren Ü32 Freizeit/Betrieb"},
	{"herren", "Herren"},
	{"herren_freizeit", "Herren Freizeit/Betrieb"},
	{"herren_handicap", "Herren Handicap-Fußball"},
	{"a_junioren", "A-Junioren"},
	{"b_junioren", "B-Junioren"},
	{"c_junioren", "C-Junioren"},
	{"d_junioren", "D-Junioren"},
	{"e_junioren", "E-Junioren"},
	{"f_junioren", "F-Junioren"},
	{"g_junioren", "G-Junioren"},
	{"frauen_u32", "Frauen Ü32"},
	{"frauen", "Frauen"},
	{"a_juniorinnen", "A-Juniorinnen"},
	{"b_juniorinnen", "B-Juniorinnen"},
	{"c_juniorinnen", "C-Juniorinnen"},
	{"d_juniorinnen", "D-Juniorinnen"},
	{"e_juniorinnen", "E-Juniorinnen"},
	{"f_juniorinnen", "F-Juniorinnen"},
	{"g_juniorinnen", "G-Juniorinnen"},
	{"freizeitsport", "Freizeitsport"},
}

// CompetitionTypes are the Wettkampf options, in portal order.
var CompetitionTypes = []Entry{
	{"meisterschaft", "Meisterschaft"},
	{"spielnachmittag", "Spielnachmittag"},
	{"pokal", "Pokal"},
	{"turnier", "Turnier"},
	{"freundschaftsspiel", "Freundschaftsspiel"},
	{"futsal", "Futsal-Ligabetrieb"},
	{"hallenturnier", "Hallenturnier"},
	{"beachsoccer", "Beachsoccer-Meisterschaft"},
	{"auswahlspiel", "Auswahlspiel"},
	{"auswahl_freundschaftsspiel", "Auswahl-Freundschaftsspiel"},
	{"auswahlturnier", "Auswahlturnier"},
	{"auswahl_trainingsspiel", "Auswahl-Trainingsspiel"},
}

// Catalogs bundles both lists for API responses.
type Catalogs struct {
	TeamCategories   []Entry `json:"team_categories"`
	CompetitionTypes []Entry `json:"competition_types"`
}

// All returns copies of both catalogs.
func All() Catalogs {
	return Catalogs{
		TeamCategories:   append([]Entry(nil), TeamCategories...),
		CompetitionTypes: append([]Entry(nil), CompetitionTypes...),
	}
}

// Label returns the label for key in entries.
func Label(entries []Entry, key string) (string, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Label, true
		}
	}
	return "", false
}

// Keys returns the keys of entries sorted alphabetically.
func Keys(entries []Entry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}
