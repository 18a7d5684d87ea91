package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field names a game attribute read from the results table.
type Field string

const (
	FieldMatchNumber Field = "matchNumber"
	FieldKickoff     Field = "kickoff"
	FieldMatchday    Field = "matchday"
	FieldHomeTeam    Field = "homeTeam"
	FieldAwayTeam    Field = "awayTeam"
	FieldResult      Field = "result"
	FieldStatus      Field = "status"
)

// NoFallback marks a column without a legacy position.
const NoFallback = -1

// Column declares how to find one field: header label variants in priority order,
// then a legacy fixed position.
type Column struct {
	Field    Field
	Labels   []string
	Fallback int
}

// Columns is the column table for the Spielsuche results view.
var Columns = []Column{
	{Field: FieldMatchNumber, Labels: []string{"Spiel", "Spiel-Nr."}, Fallback: 2},
	{Field: FieldKickoff, Labels: []string{"Anstoß", "Anstoss", "Datum/Uhrzeit", "Datum"}, Fallback: 3},
	{Field: FieldMatchday, Labels: []string{"Spieltag", "ST"}, Fallback: 4},
	{Field: FieldHomeTeam, Labels: []string{"Heim", "Heimmannschaft"}, Fallback: 5},
	{Field: FieldAwayTeam, Labels: []string{"Gast", "Gastmannschaft"}, Fallback: 7},
	{Field: FieldResult, Labels: []string{"Ergebnis"}, Fallback: 8},
	{Field: FieldStatus, Labels: []string{"Status", "Spielstatus"}, Fallback: NoFallback},
}

// Source tells which rule produced a column position.
type Source int

const (
	SourceUnresolved Source = iota
	SourceHeader
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceFallback:
		return "fallback"
	default:
		return "unresolved"
	}
}

// Resolved is the position chosen for one field. Index is -1 when unresolved.
type Resolved struct {
	Index  int
	Source Source
}

// Resolution maps every field in Columns to its position.
type Resolution map[Field]Resolved

// Missing lists the fields the header did not name, in Columns order.
func (r Resolution) Missing() []Field {
	var missing []Field
	for _, col := range Columns {
		if r[col.Field].Source != SourceHeader {
			missing = append(missing, col.Field)
		}
	}
	return missing
}

// Cell returns the cell for field, or "" when the field is unresolved or the row is short.
func (r Resolution) Cell(cells []string, field Field) string {
	res, ok := r[field]
	if !ok || res.Index < 0 || res.Index >= len(cells) {
		return ""
	}
	return cells[res.Index]
}

// NormalizeHeader folds a header label to a lookup key: diacritics removed,
// lowercased, everything except a-z and 0-9 dropped. "Spiel-Nr." becomes "spielnr".
func NormalizeHeader(label string) string {
	// Chained transformers keep state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripMarks, label)
	if err != nil {
		folded = label
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HeaderMap indexes header cells by normalized label. Cells that normalize to ""
// are ignored and the last cell wins when two labels collide.
func HeaderMap(cells []string) map[string]int {
	m := make(map[string]int, len(cells))
	for i, c := range cells {
		if key := NormalizeHeader(c); key != "" {
			m[key] = i
		}
	}
	return m
}

// ResolveColumns picks a position for every field in Columns.
func ResolveColumns(header map[string]int) Resolution {
	res := make(Resolution, len(Columns))
	for _, col := range Columns {
		res[col.Field] = resolve(col, header)
	}
	return res
}

func resolve(col Column, header map[string]int) Resolved {
	for _, label := range col.Labels {
		if i, ok := header[NormalizeHeader(label)]; ok {
			return Resolved{Index: i, Source: SourceHeader}
		}
	}
	if col.Fallback == NoFallback {
		return Resolved{Index: -1, Source: SourceUnresolved}
	}
	return Resolved{Index: col.Fallback, Source: SourceFallback}
}
