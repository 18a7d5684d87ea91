package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/dfbnet-assist/internal/config"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
	"github.com/pfrederiksen/dfbnet-assist/internal/scraper"
)

// Fetcher loads the games of a results page.
type Fetcher interface {
	FetchGames(ctx context.Context, url string, opts match.Options) ([]match.UpcomingGame, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string, opts match.Options) ([]match.UpcomingGame, error)

// FetchGames calls f.
func (f FetcherFunc) FetchGames(ctx context.Context, url string, opts match.Options) ([]match.UpcomingGame, error) {
	return f(ctx, url, opts)
}

// HTTPFetcher fetches results pages with the scraper.
var HTTPFetcher = FetcherFunc(func(ctx context.Context, url string, opts match.Options) ([]match.UpcomingGame, error) {
	return scraper.New(url, scraper.WithExtractOptions(opts)).FetchGames(ctx)
})

// Options configures a Server.
type Options struct {
	Config  config.Config
	Store   *referee.Store
	Fetcher Fetcher
	// Browser runs the referee fill. Nil means a dry run whose steps are
	// returned in the response.
	Browser  report.Browser
	Logger   *logger.Logger
	Metrics  *logger.Metrics
	Timeouts report.Timeouts
	// Sleep is handed to the report processor. Nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// session is the result of the last run.
type session struct {
	games            []match.UpcomingGame
	team             string
	source           string
	teamCategory     string
	competitionTypes []string
	startedAt        time.Time
}

// Server serves the dashboard and JSON API.
type Server struct {
	opts    Options
	log     *logger.Logger
	metrics *logger.Metrics
	matcher *referee.Matcher
	mux     *http.ServeMux

	mu      sync.Mutex
	session *session
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = HTTPFetcher
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == nil {
		opts.Store = referee.NewStore(referee.Options{
			JSONPath: opts.Config.RefereeJSON,
			CSVPath:  opts.Config.RefereeCSV,
			Defaults: opts.Config.DefaultGroups(),
			Logger:   opts.Logger,
		})
	}

	s := &Server{
		opts:    opts,
		log:     opts.Logger.With(logger.Fields{"component": "server"}),
		metrics: opts.Metrics,
		matcher: referee.NewMatcher(opts.Store, "", opts.Logger),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/run", s.handleRun)
	s.mux.HandleFunc("POST /api/filter", s.handleFilter)
	s.mux.HandleFunc("GET /api/teams", s.handleTeams)
	s.mux.HandleFunc("POST /api/open-match", s.handleOpenMatch)
	s.mux.HandleFunc("POST /api/referees/lookup", s.handleRefereeLookup)
	s.mux.HandleFunc("GET /api/catalogs", s.handleCatalogs)
	s.mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)
}

// ServeHTTP counts and logs every request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := s.opts.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	elapsed := s.opts.Now().Sub(start)
	s.metrics.IncrCounter("http.requests")
	s.metrics.RecordTiming("http."+routeName(r.URL.Path), elapsed)
	s.log.Debug("Request served", logger.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   rec.status,
		"duration": elapsed.String(),
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("DFB automation UI available", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routeName(path string) string {
	name := strings.Trim(strings.TrimPrefix(path, "/api"), "/")
	if name == "" {
		return "dashboard"
	}
	return strings.ReplaceAll(name, "/", ".")
}

// drain discards the rest of a request body so the connection can be reused.
func drain(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 1<<20))
	_ = r.Close()
}
