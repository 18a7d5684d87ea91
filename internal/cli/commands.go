package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/dfbnet-assist/internal/catalog"
	"github.com/pfrederiksen/dfbnet-assist/internal/config"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
	"github.com/pfrederiksen/dfbnet-assist/internal/season"
	"github.com/pfrederiksen/dfbnet-assist/internal/server"
	"github.com/pfrederiksen/dfbnet-assist/internal/storage"
)

// reportSleep is handed to the report processor; nil means a real timer.
var reportSleep func(ctx context.Context, d time.Duration) error

var (
	flagDate   string
	flagMatch  string
	flagListen  string
	flagBrowser string
)

func newSeasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Print the season labels for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := now()
			if flagDate != "" {
				d, err := season.ParseDate(flagDate, nil)
				if err != nil {
					return err
				}
				t = d
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Season:      %s\n", season.Full(t))
			fmt.Fprintf(out, "Short:       %s\n", season.Short(t))
			fmt.Fprintf(out, "Context:     %s\n", season.ContextValue(t))
			fmt.Fprintf(out, "Search date: %s\n", season.DefaultSearchDate())
			return nil
		},
	}
	cmd.Flags().StringVar(&flagDate, "date", "", "Date as dd.mm.yyyy (default today)")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the team categories and competition types of the search form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(flagFormat, FormatText, FormatJSON)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			all := catalog.All()
			if format == FormatJSON {
				return writeJSON(out, all)
			}
			writeCatalog := func(title string, entries []catalog.Entry) {
				fmt.Fprintf(out, "%s:\n", title)
				for _, e := range entries {
					fmt.Fprintf(out, "  %-28s %s\n", e.Key, e.Label)
				}
			}
			writeCatalog("Mannschaftsart", all.TeamCategories)
			fmt.Fprintln(out)
			writeCatalog("Wettkampfart", all.CompetitionTypes)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			return writeJSON(e.out, e.cfg.Redacted())
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the referee fill for one game",
		Long: `Run the referee fill for one game of a results page. With the default
dryrun browser every action the fill would perform is printed. With
--browser chrome the fill runs in Chrome. The per-referee outcome follows.`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
	cmd.Flags().StringVar(&flagHTML, "html", "", "Saved results page")
	cmd.Flags().StringVar(&flagURL, "url", "", "Results page URL (default results_url from config)")
	cmd.Flags().StringVar(&flagCookie, "cookie", "", "Cookie header sent with --url")
	cmd.Flags().BoolVar(&flagAllStatuses, "all-statuses", false, "Keep games of every status")
	cmd.Flags().StringVar(&flagMatch, "match", "", "Match number of the game (default the first game with a report link)")
	cmd.Flags().StringVar(&flagBrowser, "browser", "", "Browser: dryrun or chrome (default browser from config)")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	games, _, err := loadGames(cmd, e)
	if err != nil {
		return err
	}
	game, err := pickGame(games, flagMatch)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	var steps bytes.Buffer
	p := report.NewProcessor(referee.NewMatcher(e.store(), "", e.log), report.Options{
		Context: e.cfg.TargetContext,
		BaseURL: e.cfg.BaseURL,
		Logger:  e.log,
		Sleep:   reportSleep,
	})
	browser, release, err := openBrowser(ctx, e, &steps)
	if err != nil {
		return err
	}
	defer release()
	page, rep, err := p.Open(ctx, browser, game)
	if err != nil {
		return err
	}
	_ = page.Close()

	fmt.Fprintf(e.out, "Match #%s: %s vs %s\n\n", game.MatchNumber, game.HomeTeam, game.AwayTeam)
	fmt.Fprint(e.out, steps.String())
	fmt.Fprintln(e.out)
	if rep.Abandoned != nil {
		fmt.Fprintf(e.out, "Abandoned: %v\n", rep.Abandoned)
		return nil
	}
	for _, o := range rep.Outcomes {
		fmt.Fprintln(e.out, o)
	}
	fmt.Fprintf(e.out, "Filled %d, skipped %d\n", rep.Filled(), rep.Skipped())
	if rep.FollowUp != nil {
		fmt.Fprintf(e.out, "Mannschaften: %v\n", rep.FollowUp)
	}
	return nil
}

// pickGame finds the game with number, or the first game with a report link.
func pickGame(games []match.UpcomingGame, number string) (match.UpcomingGame, error) {
	number = strings.TrimSpace(number)
	for _, g := range games {
		if number == "" && g.ReportLink != "" {
			return g, nil
		}
		if number != "" && g.MatchNumber == number {
			return g, nil
		}
	}
	if number == "" {
		return match.UpcomingGame{}, report.ErrNoReportLink
	}
	return match.UpcomingGame{}, fmt.Errorf("game not found: %s", number)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			addr := flagListen
			if addr == "" {
				addr = e.cfg.ListenAddr
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			opts := server.Options{Config: e.cfg, Logger: e.log}
			name, err := browserName(e)
			if err != nil {
				return err
			}
			// A nil Browser makes the server dry-run each fill on its own.
			if name == config.BrowserChrome {
				browser, release, err := openBrowser(ctx, e, io.Discard)
				if err != nil {
					return err
				}
				defer release()
				opts.Browser = browser
			}
			return server.New(opts).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default listen_addr from config)")
	cmd.Flags().StringVar(&flagBrowser, "browser", "", "Browser: dryrun or chrome (default browser from config)")
	return cmd
}

// browserName is --browser, or the configured browser.
func browserName(e *env) (string, error) {
	name := e.cfg.Browser
	if flagBrowser != "" {
		name = strings.ToLower(strings.TrimSpace(flagBrowser))
	}
	switch name {
	case "":
		return config.BrowserDryRun, nil
	case config.BrowserDryRun, config.BrowserChrome:
		return name, nil
	default:
		return "", fmt.Errorf("invalid browser: %s", name)
	}
}

// openBrowser returns the browser the referee fill runs against and a func
// that releases it. A dry-run browser prints its steps to steps.
func openBrowser(ctx context.Context, e *env, steps io.Writer) (report.Browser, func(), error) {
	name, err := browserName(e)
	if err != nil {
		return nil, nil, err
	}
	if name == config.BrowserDryRun {
		return report.NewDryRun(steps), func() {}, nil
	}

	opts := report.ChromeOptions{RemoteURL: e.cfg.ChromeURL, Headless: e.cfg.ChromeHeadless, Logger: e.log}
	if opts.RemoteURL == "" {
		dir, err := storage.ExpandHome(e.cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		opts.UserDataDir = filepath.Join(dir, "chrome")
	}
	c, err := report.NewChrome(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}
