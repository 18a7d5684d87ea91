package referee

import (
	"bytes"
	"encoding/json"
)

// Shape names the stored layouts Normalize understands.
type Shape int

const (
	// ShapeUnknown is anything that is not a JSON object.
	ShapeUnknown Shape = iota
	// ShapeNested is the current layout: {"context": {...}, "referees": [...]}.
	ShapeNested
	// ShapeLegacyFlat keeps the context keys (and sometimes Vorname/Nachname)
	// directly on the entry.
	ShapeLegacyFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeLegacyFlat:
		return "legacy-flat"
	default:
		return "unknown"
	}
}

type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func (o object) str(key string) (string, bool) {
	raw, ok := o[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// DetectShape classifies a stored group entry.
func DetectShape(raw json.RawMessage) Shape {
	obj, ok := decodeObject(raw)
	if !ok {
		return ShapeUnknown
	}
	if _, nested := decodeObject(obj["context"]); nested {
		return ShapeNested
	}
	return ShapeLegacyFlat
}

// Normalize rebuilds a Group from one stored entry of any supported shape.
//
// Context values come from the nested context object when present there as strings,
// then from the same key on the entry itself, else "". Referees come from the
// "referees" array, then a singular "referee" value, then top-level Vorname and
// Nachname. Entries that are not objects or carry no name are dropped.
func Normalize(raw json.RawMessage) Group {
	g := Group{Referees: []Entry{}}

	obj, ok := decodeObject(raw)
	if !ok {
		return g
	}

	nested, _ := decodeObject(obj["context"])
	for _, key := range ContextKeys {
		if v, ok := nested.str(key); ok {
			g.Context.Set(key, v)
		} else if v, ok := obj.str(key); ok {
			g.Context.Set(key, v)
		}
	}

	for _, candidate := range refereeCandidates(obj) {
		e := entryFrom(candidate)
		if !e.IsBlank() {
			g.Referees = append(g.Referees, e)
		}
	}

	if len(g.Referees) == 0 {
		first, _ := obj.str("Vorname")
		last, _ := obj.str("Nachname")
		if e := (Entry{FirstName: first, LastName: last}); !e.IsBlank() {
			g.Referees = append(g.Referees, e)
		}
	}
	return g
}

func refereeCandidates(obj object) []json.RawMessage {
	if raw, ok := obj["referees"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil && list != nil {
			return list
		}
	}
	if raw, ok := obj["referee"]; ok && truthy(raw) {
		return []json.RawMessage{raw}
	}
	return nil
}

func entryFrom(raw json.RawMessage) Entry {
	obj, ok := decodeObject(raw)
	if !ok {
		return Entry{}
	}
	first, _ := obj.str("Vorname")
	last, _ := obj.str("Nachname")
	return Entry{FirstName: first, LastName: last}
}

// truthy treats null, false, 0 and "" as absent.
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
