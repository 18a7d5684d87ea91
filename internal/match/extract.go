package match

import (
	"strings"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
)

// Row is one table row as the extractor sees it.
type Row interface {
	// Cells returns the inner text of every th/td cell in the row.
	Cells() []string
	// ReportLink returns the first link to a match report page, or empty strings.
	ReportLink() (href, text string, err error)
}

// Table is a results table. Rows includes the header row, if there is one.
type Table interface {
	// HeaderCells returns the th texts of the first row.
	HeaderCells() []string
	Rows() []Row
}

// StatusFilter decides from the status text whether a game is kept.
type StatusFilter func(status string) bool

// PlannedOnly keeps games without a status and games whose status mentions
// "geplant" or "planung" in any letter case.
func PlannedOnly(status string) bool {
	return StatusKeywords("geplant", "planung")(status)
}

// AllStatuses keeps every game.
func AllStatuses(string) bool { return true }

// StatusKeywords keeps games without a status and games whose status contains one of
// the keywords, case-insensitively.
func StatusKeywords(keywords ...string) StatusFilter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return func(status string) bool {
		if status == "" {
			return true
		}
		s := strings.ToLower(status)
		for _, k := range lowered {
			if strings.Contains(s, k) {
				return true
			}
		}
		return false
	}
}

// Options tunes an extraction.
type Options struct {
	// Status filters rows; nil means PlannedOnly.
	Status  StatusFilter
	Logger  *logger.Logger
	Metrics *logger.Metrics
}

func (o Options) withDefaults() Options {
	if o.Status == nil {
		o.Status = PlannedOnly
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	if o.Metrics == nil {
		o.Metrics = logger.DefaultMetrics()
	}
	return o
}

// Extract reads the games from t. A nil table yields no games.
func Extract(t Table, opts Options) []UpcomingGame {
	games := make([]UpcomingGame, 0)
	if t == nil {
		return games
	}
	opts = opts.withDefaults()
	log := opts.Logger.With(logger.Fields{"component": "extract"})

	headerCells := t.HeaderCells()
	header := HeaderMap(headerCells)
	if len(header) == 0 {
		log.Warn("Results table header could not be determined; falling back to legacy column positions", nil)
	}

	columns := ResolveColumns(header)
	for _, field := range columns.Missing() {
		r := columns[field]
		if r.Source == SourceFallback {
			log.Warn("Results header did not contain an expected column; using legacy index", logger.Fields{
				"column": string(field),
				"index":  r.Index,
			})
		} else {
			log.Warn("Results header did not contain an expected column", logger.Fields{"column": string(field)})
		}
	}

	// A header row is skipped even when none of its labels are usable.
	rows := t.Rows()
	start := 0
	if len(headerCells) > 0 {
		start = 1
	}

	kept, dropped := 0, 0
	for i := start; i < len(rows); i++ {
		game, ok := decodeRow(rows[i], columns, opts.Status)
		if !ok {
			dropped++
			continue
		}
		games = append(games, game)
		kept++
	}

	opts.Metrics.AddCounter("extract.rows_kept", int64(kept))
	opts.Metrics.AddCounter("extract.rows_dropped", int64(dropped))
	log.Debug("Extracted results table", logger.Fields{"kept": kept, "dropped": dropped})
	return games
}

// decodeRow turns one row into a game. It reports false for empty rows, stray
// header rows and rows rejected by the status filter.
func decodeRow(row Row, columns Resolution, keep StatusFilter) (UpcomingGame, bool) {
	cells := CollapseCells(row.Cells())
	if len(cells) == 0 {
		return UpcomingGame{}, false
	}
	for _, c := range cells {
		if strings.EqualFold(c, "Spiel") {
			return UpcomingGame{}, false
		}
	}

	status := statusText(cells, columns)
	if !keep(status) {
		return UpcomingGame{}, false
	}

	href, text, err := row.ReportLink()
	if err != nil {
		href, text = "", ""
	}

	return UpcomingGame{
		MatchNumber:    columns.Cell(cells, FieldMatchNumber),
		Kickoff:        columns.Cell(cells, FieldKickoff),
		Matchday:       columns.Cell(cells, FieldMatchday),
		HomeTeam:       columns.Cell(cells, FieldHomeTeam),
		AwayTeam:       columns.Cell(cells, FieldAwayTeam),
		Result:         columns.Cell(cells, FieldResult),
		Status:         status,
		ReportLink:     href,
		ReportLinkText: strings.TrimSpace(text),
	}, true
}

// statusText reads the status column, or the last cell when the column is
// unresolved or beyond the end of the row.
func statusText(cells []string, columns Resolution) string {
	if r := columns[FieldStatus]; r.Index >= 0 && r.Index < len(cells) {
		return cells[r.Index]
	}
	return cells[len(cells)-1]
}

// CollapseCells trims every cell and folds whitespace runs into single spaces.
func CollapseCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}
