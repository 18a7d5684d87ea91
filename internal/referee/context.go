package referee

import "strings"

// ContextKeys lists the match context fields in their canonical order.
var ContextKeys = [7]string{
	"Saison",
	"Mannschaftsart",
	"Spielklasse",
	"Gebiet",
	"Wettkampf",
	"Staffel",
	"Runde",
}

// KeySeparator joins context values into a group key.
const KeySeparator = "::"

// MatchContext identifies the competition scope a referee group applies to.
// Field order matches ContextKeys and is the order used for JSON output.
type MatchContext struct {
	Saison         string `json:"Saison"`
	Mannschaftsart string `json:"Mannschaftsart"`
	Spielklasse    string `json:"Spielklasse"`
	Gebiet         string `json:"Gebiet"`
	Wettkampf      string `json:"Wettkampf"`
	Staffel        string `json:"Staffel"`
	Runde          string `json:"Runde"`
}

// DefaultTargetContext returns the context the tool targets when nothing else is configured.
func DefaultTargetContext() MatchContext {
	return MatchContext{
		Saison:         "Saison25/26",
		Mannschaftsart: "MannschaftsartD-Junioren",
		Spielklasse:    "SpielklasseKreisklasse C",
		Gebiet:         "GebietKreis Berlin",
		Wettkampf:      "WettkampfMeisterschaft",
		Staffel:        "Staffelunt. D-Junioren Kreisklasse C St.1 Hin",
		Runde:          "RundeRunde 1",
	}
}

// Values returns the context values in ContextKeys order.
func (c MatchContext) Values() [7]string {
	return [7]string{c.Saison, c.Mannschaftsart, c.Spielklasse, c.Gebiet, c.Wettkampf, c.Staffel, c.Runde}
}

// Get returns the value stored under one of the ContextKeys, or "" for unknown keys.
func (c MatchContext) Get(key string) string {
	if p := c.field(key); p != nil {
		return *p
	}
	return ""
}

// Set assigns value to key and reports whether key is a context key.
func (c *MatchContext) Set(key, value string) bool {
	p := c.field(key)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (c *MatchContext) field(key string) *string {
	switch key {
	case "Saison":
		return &c.Saison
	case "Mannschaftsart":
		return &c.Mannschaftsart
	case "Spielklasse":
		return &c.Spielklasse
	case "Gebiet":
		return &c.Gebiet
	case "Wettkampf":
		return &c.Wettkampf
	case "Staffel":
		return &c.Staffel
	case "Runde":
		return &c.Runde
	}
	return nil
}

// Key serializes the context into the string that identifies its group.
func (c MatchContext) Key() string {
	v := c.Values()
	return strings.Join(v[:], KeySeparator)
}

// DetailText is the context as the match report page renders it: all values run together.
func (c MatchContext) DetailText() string {
	v := c.Values()
	return strings.Join(v[:], "")
}

// Equal reports exact, field-for-field equality. No normalization is applied.
func (c MatchContext) Equal(other MatchContext) bool {
	return c == other
}

// IsZero reports whether every field is empty.
func (c MatchContext) IsZero() bool {
	return c == (MatchContext{})
}

// ContextFromRecord extracts the seven context values from a raw CSV record.
// Missing columns become "".
func ContextFromRecord(r Record) MatchContext {
	var c MatchContext
	for _, key := range ContextKeys {
		c.Set(key, r[key])
	}
	return c
}
