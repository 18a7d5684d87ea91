package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/dfbnet-assist/internal/filter"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/scraper"
	"github.com/pfrederiksen/dfbnet-assist/internal/storage"
)

var (
	flagHTML        string
	flagURL         string
	flagCookie      string
	flagTeam        string
	flagContains    []string
	flagListTeams   bool
	flagPrefix      string
	flagAllStatuses bool
	flagFormat      string
	flagSort        string
	flagTrack       bool
	flagDataDir     string
	flagDates       string
	flagWeekends    bool
	flagWithLink    bool
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List upcoming games from a Spielsuche results page",
		Long: `List upcoming games from a saved (--html) or fetched (--url) Spielsuche
results page. Only planned games are shown unless --all-statuses is set.

With --track only games not seen on the previous tracked run are shown, and
the command exits with status 2 when there are any.`,
		RunE: runGames,
	}

	cmd.Flags().StringVar(&flagHTML, "html", "", "Saved results page")
	cmd.Flags().StringVar(&flagURL, "url", "", "Results page URL (default results_url from config)")
	cmd.Flags().StringVar(&flagCookie, "cookie", "", "Cookie header sent with --url, e.g. a logged-in session")
	cmd.Flags().StringVar(&flagTeam, "team", "", "Only games of this exact team")
	cmd.Flags().StringSliceVar(&flagContains, "team-contains", nil, "Only games where a team name contains one of these")
	cmd.Flags().BoolVar(&flagListTeams, "list-teams", false, "List the teams matching --prefix instead of games")
	cmd.Flags().StringVar(&flagPrefix, "prefix", "", "Team prefix for --list-teams (default team_prefix from config)")
	cmd.Flags().BoolVar(&flagAllStatuses, "all-statuses", false, "Keep games of every status")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort order: kickoff, matchday or home")
	cmd.Flags().BoolVar(&flagTrack, "track", false, "Only show games that are new since the last tracked run")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Data directory for snapshots (default data_dir from config)")
	cmd.Flags().StringVar(&flagDates, "dates", "", `Kickoff range, e.g. "01.10.-31.10.2024", "12.10.2024" or "Oktober"`)
	cmd.Flags().BoolVar(&flagWeekends, "weekends", false, "Only games on Saturday or Sunday")
	cmd.Flags().BoolVar(&flagWithLink, "with-report-link", false, "Only games with a match-report link")
	return cmd
}

func runGames(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	allowed := []OutputFormat{FormatText, FormatJSON, FormatICS}
	if flagListTeams {
		allowed = allowed[:2]
	}
	format, err := ParseFormat(flagFormat, allowed...)
	if err != nil {
		return err
	}
	var order match.SortOrder
	if flagSort != "" {
		o, ok := match.ParseSortOrder(flagSort)
		if !ok {
			return fmt.Errorf("invalid sort order: %s (must be kickoff, matchday or home)", flagSort)
		}
		order = o
	}

	games, source, err := loadGames(cmd, e)
	if err != nil {
		return err
	}
	e.log.Debug("Loaded games", logger.Fields{"source": source, "games": len(games)})

	if flagListTeams {
		prefix := flagPrefix
		if prefix == "" {
			prefix = e.cfg.TeamPrefix
		}
		teams := filter.TeamsWithPrefix(games, prefix)
		if format == FormatJSON {
			return writeJSON(e.out, teams)
		}
		if len(teams) == 0 {
			fmt.Fprintf(e.out, "No teams starting with %q.\n", prefix)
			return nil
		}
		for _, t := range teams {
			fmt.Fprintln(e.out, t)
		}
		return nil
	}

	f, err := buildFilter()
	if err != nil {
		return err
	}
	games = f.Apply(games)
	if order != "" {
		match.SortGames(games, order)
	}

	if flagTrack {
		dir := flagDataDir
		if dir == "" {
			dir = e.cfg.DataDir
		}
		store, err := storage.New(dir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		games, err = store.Track(games, flagTeam)
		if err != nil {
			return fmt.Errorf("tracking games: %w", err)
		}
		e.log.Debug("Saved snapshot", logger.Fields{"dir": store.Dir(), "new": len(games)})
	}

	result := &OutputResult{
		CheckedAt: now().UTC(),
		Source:    source,
		Tracked:   flagTrack,
		Games:     games,
		GameCount: len(games),
	}
	if !f.IsEmpty() {
		result.Filter = f.String()
	}
	if err := WriteOutput(e.out, result, format, OutputOptions{Verbose: flagVerbose, BaseURL: e.cfg.BaseURL}); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if flagTrack && len(games) > 0 {
		return errNewGames
	}
	return nil
}

// loadGames reads --html, or fetches --url or the configured results page.
func loadGames(cmd *cobra.Command, e *env) ([]match.UpcomingGame, string, error) {
	opts := match.Options{Status: e.cfg.StatusFilter(), Logger: e.log}
	if flagAllStatuses {
		opts.Status = match.AllStatuses
	}

	if flagHTML != "" {
		games, err := scraper.ParseFile(flagHTML, opts)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", flagHTML, err)
		}
		return games, flagHTML, nil
	}

	url := strings.TrimSpace(flagURL)
	if url == "" {
		url = e.cfg.ResultsURL
	}
	if url == "" {
		return nil, "", fmt.Errorf("no results page: pass --html or --url, or set results_url in the config")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	games, err := scraper.New(url, scraper.WithCookie(flagCookie), scraper.WithExtractOptions(opts)).FetchGames(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetching games: %w", err)
	}
	return games, url, nil
}

func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Team = strings.TrimSpace(flagTeam)
	for _, s := range flagContains {
		if s = strings.TrimSpace(s); s != "" {
			f.TeamContains = append(f.TeamContains, s)
		}
	}
	if flagDates != "" {
		from, to, err := filter.ParseDateRange(flagDates, now())
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	f.WeekendsOnly = flagWeekends
	f.WithReportLink = flagWithLink
	return f, nil
}
