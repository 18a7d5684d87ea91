package report

import (
	"errors"
	"strings"
)

// DefaultBaseURL prefixes relative report links.
const DefaultBaseURL = "https://www.dfbnet.org"

// ErrNoReportLink is returned for games without a match-report link.
var ErrNoReportLink = errors.New("selected match does not have an edit link available")

// ReportURL turns a report link into an absolute URL. Links starting with "http"
// are returned unchanged; anything else is appended to base ("" means
// DefaultBaseURL).
func ReportURL(link, base string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrNoReportLink
	}
	if strings.HasPrefix(link, "http") {
		return link, nil
	}
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link, nil
}
