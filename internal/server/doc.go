// Package server exposes the extraction and fill workflow over HTTP.
//
// One session holds the games of the last run. The dashboard at "/" drives the
// JSON API:
//
//	GET  /api/state            session state and games
//	POST /api/run              extract games from a results URL or posted HTML
//	POST /api/filter           narrow the session games to one team
//	GET  /api/teams            the club's teams found in the session
//	POST /api/open-match       run the referee fill for one game
//	POST /api/referees/lookup  referees stored for a match context
//	GET  /api/catalogs         team categories and competition types
//	GET  /api/metrics          counters and timings
//	POST /api/reset            drop the session
//
// Game indexes always refer to the unfiltered session list.
package server
