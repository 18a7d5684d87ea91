// Package referee groups referee assignments by match context and resolves them
// for a match report.
//
// Referee data starts life as a flat CSV export (one referee per row, with the seven
// context columns Saison through Runde). ConvertCSV groups those rows by context and
// persists them as JSON; Store.Load reads the JSON back, tolerating older flat shapes,
// and falls back to the built-in defaults when the file is unreadable or corrupt.
//
// Matching is exact: a group applies to a match only when all seven context values are
// byte-for-byte equal to the context shown on the match report page.
package referee
