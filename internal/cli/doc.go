// Package cli implements the command-line interface for dfbnet-assist.
//
// The cli package provides the Cobra-based command tree: listing upcoming games from a
// saved or fetched Spielsuche results page (text, JSON or iCalendar output, team and
// date filters, sorting, new-game tracking), managing the referee store, printing
// season labels and form catalogs, dry-running the referee fill and serving the
// dashboard. It wires config, logger, scraper, storage and the domain packages.
package cli
