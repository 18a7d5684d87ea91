package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
)

const (
	UserAgent = "dfbnet-assist/1.0 (github.com/pfrederiksen/dfbnet-assist)"
	Timeout   = 30 * time.Second
)

// Scraper handles fetching and parsing Spielsuche result pages
type Scraper struct {
	client  *http.Client
	url     string
	cookie  string
	extract match.Options
	metrics *logger.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithCookie sends a session cookie header, e.g. copied from a logged-in browser.
func WithCookie(cookie string) Option {
	return func(s *Scraper) { s.cookie = cookie }
}

// WithExtractOptions sets the options passed to the extractor.
func WithExtractOptions(opts match.Options) Option {
	return func(s *Scraper) { s.extract = opts }
}

// New creates a Scraper for a results URL.
func New(url string, opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url: url,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = s.extract.Metrics
	if s.metrics == nil {
		s.metrics = logger.DefaultMetrics()
	}
	return s
}

// URL returns the results URL the scraper fetches.
func (s *Scraper) URL() string {
	return s.url
}

// FetchGames fetches the results page and extracts its games
func (s *Scraper) FetchGames(ctx context.Context) ([]match.UpcomingGame, error) {
	doc, err := s.FetchDocument(ctx)
	if err != nil {
		return nil, err
	}
	return match.ExtractDocument(doc, s.extract), nil
}

// FetchDocument fetches and parses the results page.
func (s *Scraper) FetchDocument(ctx context.Context) (*goquery.Document, error) {
	start := time.Now()
	defer func() { s.metrics.RecordTiming("http.fetch", time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	s.metrics.IncrCounter("http.requests")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseDocument(resp.Body)
}

// ParseFile extracts games from a saved results page.
func ParseFile(path string, opts match.Options) ([]match.UpcomingGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results page: %w", err)
	}
	defer f.Close()
	return match.ExtractHTML(f, opts)
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
