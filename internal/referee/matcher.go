package referee

import (
	"strings"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
)

// Lookup resolves referees for a context. *Store implements it.
type Lookup interface {
	FindForContext(ctx MatchContext, path string) ([]Name, error)
}

// Matcher resolves the referees to enter on a match report.
type Matcher struct {
	lookup Lookup
	path   string
	log    *logger.Logger
}

// NewMatcher creates a Matcher reading from path ("" for the lookup's default store).
func NewMatcher(lookup Lookup, path string, log *logger.Logger) *Matcher {
	if log == nil {
		log = logger.Default()
	}
	return &Matcher{lookup: lookup, path: path, log: log.With(logger.Fields{"component": "matcher"})}
}

// ForContext returns the referees for ctx. Lookup errors are logged and yield none,
// which makes the caller skip the fill.
func (m *Matcher) ForContext(ctx MatchContext) []Name {
	names, err := m.lookup.FindForContext(ctx, m.path)
	if err != nil {
		m.log.Error("Referee lookup failed", logger.Fields{"context": ctx.Key()}, err)
		return []Name{}
	}
	return names
}

// ForPageText finds the first candidate whose detail text appears in the page text
// and returns it with its referees. Whitespace runs in the page text are collapsed
// before comparing.
func (m *Matcher) ForPageText(text string, candidates []MatchContext) (MatchContext, []Name, bool) {
	text = strings.Join(strings.Fields(text), " ")
	for _, c := range candidates {
		if strings.Contains(text, c.DetailText()) {
			return c, m.ForContext(c), true
		}
	}
	return MatchContext{}, []Name{}, false
}
