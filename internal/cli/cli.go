package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/dfbnet-assist/internal/config"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNewGames = 2
)

// errNewGames makes Execute exit with ExitNewGames after a tracked run found games.
var errNewGames = errors.New("new games found")

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
	flagVerbose  bool
)

// now is replaced in tests.
var now = time.Now

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dfbnet-assist",
		Short: "Extract upcoming DFBnet games and prefill match-report referees",
		Long: `A tool for the DFBnet Spielsuche workflow.
Lists upcoming games from a results page and fills the referees for a match
context into the match report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./"+config.FileName+" if present)")
	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Env file (default ./"+config.DotEnvName+" if present)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newGamesCmd(),
		newRefereesCmd(),
		newSeasonCmd(),
		newCatalogCmd(),
		newConfigCmd(),
		newReportCmd(),
		newServeCmd(),
	)
	return cmd
}

// env holds what every command needs after config loading.
type env struct {
	cfg config.Config
	log *logger.Logger
	out io.Writer
}

// setup loads the config and installs the logger.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(config.Options{Path: flagConfig, EnvFile: flagEnvFile})
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		lvl, ok := logger.ParseLevel(flagLogLevel)
		if !ok {
			return nil, fmt.Errorf("invalid log level: %s", flagLogLevel)
		}
		level = lvl
	}
	if flagVerbose {
		level = logger.LevelDebug
	}

	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)
	if cfg.Source != "" {
		log.Debug("Loaded config", logger.Fields{"path": cfg.Source})
	}
	return &env{cfg: cfg, log: log, out: cmd.OutOrStdout()}, nil
}

func (e *env) store() *referee.Store {
	return referee.NewStore(referee.Options{
		JSONPath: e.cfg.RefereeJSON,
		CSVPath:  e.cfg.RefereeCSV,
		Defaults: e.cfg.DefaultGroups(),
		Logger:   e.log,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNewGames):
		return ExitNewGames
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
}
