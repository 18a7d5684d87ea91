// Package match turns a DFBnet Spielsuche results table into UpcomingGame records.
//
// The results table varies between portal releases: columns move, header labels change
// spelling, and some views have no header row at all. Extract therefore resolves each
// column from the header labels when it can and falls back to the historic fixed
// positions when it cannot. Only games that are still planned survive the default
// status filter.
//
// The extractor works on the small Table and Row interfaces, so it can be driven by a
// browser automation layer or, through NewHTMLTable, by a goquery document.
package match
