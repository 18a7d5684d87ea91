// Package scraper fetches DFBnet Spielsuche result pages over HTTP and hands the
// parsed document to the match extractor.
//
// Pages behind the portal login can also be saved from the browser and read with
// ParseFile, which runs the same extraction without a network round trip.
package scraper
