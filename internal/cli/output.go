package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/calendar"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates a --format value against allowed.
func ParseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if f == a {
			return f, nil
		}
		names[i] = "'" + string(a) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", s, strings.Join(names, " or "))
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt time.Time            `json:"checked_at"`
	Source    string               `json:"source"`
	Filter    string               `json:"filter,omitempty"`
	Tracked   bool                 `json:"tracked,omitempty"`
	Games     []match.UpcomingGame `json:"games"`
	GameCount int                  `json:"game_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, opts OutputOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, opts)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Games, calendar.Options{BaseURL: opts.BaseURL}))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputOptions tune text and calendar output.
type OutputOptions struct {
	Verbose bool
	BaseURL string
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, opts OutputOptions) error {
	label := "upcoming games"
	if result.Tracked {
		label = "new games"
	}

	if result.GameCount == 0 {
		fmt.Fprintf(w, "No %s found.\n", label)
		return nil
	}

	fmt.Fprintf(w, "Found %d %s:\n", result.GameCount, label)
	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}
	for i, g := range result.Games {
		fmt.Fprintf(w, "%3d. %s\n", i+1, g.Summary())
		if !opts.Verbose {
			continue
		}
		if url, err := report.ReportURL(g.ReportLink, opts.BaseURL); err == nil {
			fmt.Fprintf(w, "     Report: %s\n", url)
		} else {
			fmt.Fprintln(w, "     Report: -")
		}
	}
	fmt.Fprintf(w, "\nTotal: %d %s\n", result.GameCount, label)
	return nil
}
