// Package config loads dfbnet-assist settings from an optional JSON file, an
// optional .env file and the environment.
//
// Precedence, highest first: environment variables, the .env file, the config
// file, built-in defaults. An explicitly requested config or .env file must
// exist; the defaults in the working directory are optional.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/match"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
	"github.com/pfrederiksen/dfbnet-assist/internal/report"
	"github.com/pfrederiksen/dfbnet-assist/internal/storage"
)

const (
	// ErrCodeNotFound means an explicitly requested config file does not exist.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the config file could not be read or parsed, or a value is invalid.
	ErrCodeInvalid = "config_invalid"
)

// FileName is the config file looked up in the working directory.
const FileName = "dfbnet-assist.json"

// DotEnvName is the env file looked up in the working directory.
const DotEnvName = ".env"

// Browsers the referee fill can run against.
const (
	BrowserDryRun = "dryrun"
	BrowserChrome = "chrome"
)

const (
	DefaultRefereeJSON = "referees.json"
	DefaultRefereeCSV  = "referees.csv"
	DefaultListenAddr  = ":3000"
)

// Environment variables read by Load.
const (
	EnvUsername = "DFBNET_USERNAME"
	EnvPassword = "DFBNET_PASSWORD"
	EnvBaseURL  = "DFBNET_BASE_URL"
	EnvPort     = "PORT"
	EnvLogLevel = "DFBNET_LOG_LEVEL"
	EnvBrowser  = "DFBNET_BROWSER"
	// EnvChromeURL is a DevTools websocket URL of a running Chrome.
	EnvChromeURL = "DFBNET_CHROME_URL"
	// EnvChromeHeadless is a boolean; it only applies to a launched Chrome.
	EnvChromeHeadless = "DFBNET_CHROME_HEADLESS"
)

// FileConfig mirrors dfbnet-assist.json.
type FileConfig struct {
	RefereeJSON     string                `json:"referee_json"`
	RefereeCSV      string                `json:"referee_csv"`
	DataDir         string                `json:"data_dir"`
	BaseURL         string                `json:"base_url"`
	ResultsURL      string                `json:"results_url"`
	TeamPrefix      *string               `json:"team_prefix"`
	TargetContext   *referee.MatchContext `json:"target_context"`
	DefaultReferees []referee.Entry       `json:"default_referees"`
	ListenAddr      string                `json:"listen_addr"`
	LogLevel        string                `json:"log_level"`
	StatusKeywords  []string              `json:"status_keywords"`
	Browser         string                `json:"browser"`
	ChromeURL       string                `json:"chrome_url"`
	ChromeHeadless  *bool                 `json:"chrome_headless"`
}

// Config is the merged configuration the rest of the program consumes.
type Config struct {
	RefereeJSON     string
	RefereeCSV      string
	DataDir         string
	BaseURL         string
	ResultsURL      string
	TeamPrefix      string
	TargetContext   referee.MatchContext
	DefaultReferees []referee.Entry
	ListenAddr      string
	LogLevel        logger.Level
	StatusKeywords  []string

	// Browser is BrowserDryRun or BrowserChrome.
	Browser string
	// ChromeURL connects to a running Chrome. Empty launches a local one.
	ChromeURL string
	// ChromeHeadless hides a launched Chrome.
	ChromeHeadless bool

	// Credentials are passed through to the browser driver untouched.
	Username string
	Password string

	// Source is the config file that was read, or "".
	Source string
}

// Error is a structured configuration error.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q is invalid: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q is invalid", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code from err, or "" if err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Options tells Load where to look.
type Options struct {
	// Path is an explicit config file. Empty means Dir/FileName, if present.
	Path string
	// Dir is the working directory. Empty means the process working directory.
	Dir string
	// EnvFile is an explicit .env file. Empty means Dir/DotEnvName, if present.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RefereeJSON:    DefaultRefereeJSON,
		RefereeCSV:     DefaultRefereeCSV,
		DataDir:        storage.DefaultDataDir,
		BaseURL:        report.DefaultBaseURL,
		TeamPrefix:     "FC Hertha 03",
		TargetContext:  referee.DefaultTargetContext(),
		ListenAddr:     DefaultListenAddr,
		LogLevel:       logger.LevelInfo,
		StatusKeywords: []string{"geplant", "planung"},
		Browser:        BrowserDryRun,
	}
}

// Load reads the config file and environment and merges them over Default.
func Load(opts Options) (Config, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Path: FileName, Err: err}
		}
		dir = wd
	}

	explicit := strings.TrimSpace(opts.Path) != ""
	path := filepath.Join(dir, FileName)
	if explicit {
		path = absFrom(dir, opts.Path)
	}

	fc, exists, err := readFileConfig(path)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	if explicit && !exists {
		return Config{}, &Error{Code: ErrCodeNotFound, Path: path, Err: os.ErrNotExist}
	}

	cfg := Default()
	if exists {
		cfg.Source = path
		// Relative paths in the file are relative to the file.
		base := filepath.Dir(path)
		if err := mergeFile(&cfg, fc, base); err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
	}

	getenv, err := withDotEnv(dir, opts.EnvFile, opts.Getenv)
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg, getenv); err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return cfg, nil
}

// withDotEnv returns a getenv that falls back to the values of the .env file
// for variables the environment leaves empty.
func withDotEnv(dir, envFile string, getenv func(string) string) (func(string) string, error) {
	explicit := strings.TrimSpace(envFile) != ""
	path := filepath.Join(dir, DotEnvName)
	if explicit {
		path = absFrom(dir, envFile)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
			}
			return getenv, nil
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return vars[k]
	}, nil
}

func mergeFile(cfg *Config, fc FileConfig, base string) error {
	if s := strings.TrimSpace(fc.RefereeJSON); s != "" {
		cfg.RefereeJSON = absFrom(base, s)
	}
	if s := strings.TrimSpace(fc.RefereeCSV); s != "" {
		cfg.RefereeCSV = absFrom(base, s)
	}
	if s := strings.TrimSpace(fc.DataDir); s != "" {
		if strings.HasPrefix(s, "~/") {
			cfg.DataDir = s
		} else {
			cfg.DataDir = absFrom(base, s)
		}
	}
	if s := strings.TrimSpace(fc.BaseURL); s != "" {
		if err := validateHTTPURL("base_url", s); err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(fc.ResultsURL); s != "" {
		if err := validateHTTPURL("results_url", s); err != nil {
			return err
		}
		cfg.ResultsURL = s
	}
	if fc.TeamPrefix != nil {
		cfg.TeamPrefix = *fc.TeamPrefix
	}
	if fc.TargetContext != nil {
		if fc.TargetContext.IsZero() {
			return fmt.Errorf("target_context has no values")
		}
		cfg.TargetContext = *fc.TargetContext
	}
	if len(fc.DefaultReferees) > 0 {
		refs := make([]referee.Entry, 0, len(fc.DefaultReferees))
		for _, e := range fc.DefaultReferees {
			if !e.IsBlank() {
				refs = append(refs, e)
			}
		}
		cfg.DefaultReferees = refs
	}
	if s := strings.TrimSpace(fc.ListenAddr); s != "" {
		cfg.ListenAddr = s
	}
	if s := strings.TrimSpace(fc.LogLevel); s != "" {
		lvl, ok := logger.ParseLevel(s)
		if !ok {
			return fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
		}
		cfg.LogLevel = lvl
	}
	if fc.StatusKeywords != nil {
		cfg.StatusKeywords = append([]string(nil), fc.StatusKeywords...)
	}
	if s := strings.TrimSpace(fc.Browser); s != "" {
		b, err := parseBrowser("browser", s)
		if err != nil {
			return err
		}
		cfg.Browser = b
	}
	if s := strings.TrimSpace(fc.ChromeURL); s != "" {
		cfg.ChromeURL = s
	}
	if fc.ChromeHeadless != nil {
		cfg.ChromeHeadless = *fc.ChromeHeadless
	}
	return nil
}

func mergeEnv(cfg *Config, getenv func(string) string) error {
	cfg.Username = getenv(EnvUsername)
	cfg.Password = getenv(EnvPassword)

	if s := strings.TrimSpace(getenv(EnvBaseURL)); s != "" {
		if err := validateHTTPURL(EnvBaseURL, s); err != nil {
			return err
		}
		cfg.BaseURL = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(getenv(EnvPort)); s != "" {
		if strings.Trim(s, "0123456789") != "" {
			return fmt.Errorf("%s must be a port number, got %q", EnvPort, s)
		}
		cfg.ListenAddr = ":" + s
	}
	if s := strings.TrimSpace(getenv(EnvLogLevel)); s != "" {
		lvl, ok := logger.ParseLevel(s)
		if !ok {
			return fmt.Errorf("%s must be debug, info, warn or error, got %q", EnvLogLevel, s)
		}
		cfg.LogLevel = lvl
	}
	if s := strings.TrimSpace(getenv(EnvBrowser)); s != "" {
		b, err := parseBrowser(EnvBrowser, s)
		if err != nil {
			return err
		}
		cfg.Browser = b
	}
	if s := strings.TrimSpace(getenv(EnvChromeURL)); s != "" {
		cfg.ChromeURL = s
	}
	if s := strings.TrimSpace(getenv(EnvChromeHeadless)); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", EnvChromeHeadless, s)
		}
		cfg.ChromeHeadless = b
	}
	return nil
}

func parseBrowser(field, s string) (string, error) {
	switch b := strings.ToLower(s); b {
	case BrowserDryRun, BrowserChrome:
		return b, nil
	default:
		return "", fmt.Errorf("%s must be %s or %s, got %q", field, BrowserDryRun, BrowserChrome, s)
	}
}

// DefaultGroups returns the fallback referee groups: the configured default
// referees for the target context, or the built-in pair.
func (c Config) DefaultGroups() []referee.Group {
	groups := referee.DefaultGroups(c.TargetContext)
	if len(c.DefaultReferees) > 0 {
		groups[0].Referees = append([]referee.Entry(nil), c.DefaultReferees...)
	}
	return groups
}

// StatusFilter returns the extraction filter for StatusKeywords. An empty list
// keeps every game.
func (c Config) StatusFilter() match.StatusFilter {
	if len(c.StatusKeywords) == 0 {
		return match.AllStatuses
	}
	return match.StatusKeywords(c.StatusKeywords...)
}

// Redacted returns a copy safe to print: the password is masked.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	c.DefaultReferees = append([]referee.Entry(nil), c.DefaultReferees...)
	c.StatusKeywords = append([]string(nil), c.StatusKeywords...)
	return c
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https: %q", field, raw)
	}
	return nil
}

// absFrom makes p absolute relative to base.
func absFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig reads and parses a JSON config file. A missing file is not an error.
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
