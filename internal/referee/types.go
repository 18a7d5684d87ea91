package referee

// Entry is one referee assigned to a context.
type Entry struct {
	FirstName string `json:"Vorname"`
	LastName  string `json:"Nachname"`
}

// IsBlank reports whether both names are empty.
func (e Entry) IsBlank() bool {
	return e.FirstName == "" && e.LastName == ""
}

// Group pairs a match context with its referees in assignment order.
type Group struct {
	Context  MatchContext `json:"context"`
	Referees []Entry      `json:"referees"`
}

// Record is one raw CSV row keyed by header name.
type Record map[string]string

// Name is a (first name, last name) pair in fill order.
type Name [2]string

// First returns the first name.
func (n Name) First() string { return n[0] }

// Last returns the last name.
func (n Name) Last() string { return n[1] }

// DefaultGroups builds the built-in referee set for target.
func DefaultGroups(target MatchContext) []Group {
	return []Group{
		{
			Context: target,
			Referees: []Entry{
				{FirstName: "Paul", LastName: "Ziske"},
				{FirstName: "Gregor", LastName: "Aschenbroich"},
			},
		},
	}
}

// CloneGroups returns a deep copy of groups.
func CloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{
			Context:  g.Context,
			Referees: append([]Entry(nil), g.Referees...),
		}
		if out[i].Referees == nil {
			out[i].Referees = []Entry{}
		}
	}
	return out
}

// GroupRecords buckets records by their context key, preserving first-seen key order
// and row order within each group. Records without any name are skipped.
func GroupRecords(records []Record) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for _, r := range records {
		entry := Entry{FirstName: r["Vorname"], LastName: r["Nachname"]}
		if entry.IsBlank() {
			continue
		}

		ctx := ContextFromRecord(r)
		key := ctx.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Context: ctx, Referees: []Entry{}})
		}
		groups[i].Referees = append(groups[i].Referees, entry)
	}
	return groups
}
