package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{Dir: dir, Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v\nwant %+v", cfg, want)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty without a file", cfg.Source)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
  "referee_json": "data/refs.json",
  "referee_csv": "/srv/refs.csv",
  "data_dir": "~/dfb",
  "base_url": "https://test.dfbnet.org/",
  "results_url": "https://test.dfbnet.org/spielsuche?x=1",
  "team_prefix": "",
  "target_context": {"Saison": "Saison24/25", "Runde": "RundeRunde 2"},
  "default_referees": [{"Vorname": "Ada", "Nachname": "B"}, {"Vorname": "", "Nachname": ""}],
  "listen_addr": "127.0.0.1:8080",
  "log_level": "debug",
  "status_keywords": []
}`)

	cfg, err := Load(Options{Dir: dir, Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.RefereeJSON != filepath.Join(dir, "data", "refs.json") {
		t.Errorf("RefereeJSON = %q, want relative to config file", cfg.RefereeJSON)
	}
	if cfg.RefereeCSV != "/srv/refs.csv" || cfg.DataDir != "~/dfb" {
		t.Errorf("paths = %q %q", cfg.RefereeCSV, cfg.DataDir)
	}
	if cfg.BaseURL != "https://test.dfbnet.org" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.TeamPrefix != "" {
		t.Errorf("TeamPrefix = %q, want explicit empty prefix kept", cfg.TeamPrefix)
	}
	if cfg.TargetContext.Saison != "Saison24/25" || cfg.TargetContext.Mannschaftsart != "" {
		t.Errorf("TargetContext = %+v", cfg.TargetContext)
	}
	if len(cfg.DefaultReferees) != 1 || cfg.DefaultReferees[0].FirstName != "Ada" {
		t.Errorf("DefaultReferees = %+v, want blank entry dropped", cfg.DefaultReferees)
	}
	if cfg.LogLevel != logger.LevelDebug || cfg.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("LogLevel = %v ListenAddr = %q", cfg.LogLevel, cfg.ListenAddr)
	}
	if len(cfg.StatusKeywords) != 0 {
		t.Errorf("StatusKeywords = %v, want empty", cfg.StatusKeywords)
	}
	if !cfg.StatusFilter()("Beendet") {
		t.Error("empty status keywords should keep every game")
	}

	groups := cfg.DefaultGroups()
	if len(groups) != 1 || groups[0].Context != cfg.TargetContext || groups[0].Referees[0].LastName != "B" {
		t.Errorf("DefaultGroups() = %+v", groups)
	}
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"base_url": "https://file.example", "log_level": "error"}`)

	cfg, err := Load(Options{Dir: dir, Getenv: env(map[string]string{
		EnvUsername: "66.user",
		EnvPassword: "secret",
		EnvBaseURL:  "http://localhost:9000",
		EnvPort:     "4000",
		EnvLogLevel: "warning",
	})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q, env should win", cfg.BaseURL)
	}
	if cfg.ListenAddr != ":4000" || cfg.LogLevel != logger.LevelWarn {
		t.Errorf("ListenAddr = %q LogLevel = %v", cfg.ListenAddr, cfg.LogLevel)
	}
	if cfg.Username != "66.user" || cfg.Password != "secret" {
		t.Errorf("credentials not passed through: %q %q", cfg.Username, cfg.Password)
	}

	red := cfg.Redacted()
	if red.Password != "********" || cfg.Password != "secret" {
		t.Errorf("Redacted() password = %q, original = %q", red.Password, cfg.Password)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		explicit string
		env      map[string]string
		wantCode string
	}{
		{"explicit missing", "", "nope.json", nil, ErrCodeNotFound},
		{"bad json", `{"base_url":`, "", nil, ErrCodeInvalid},
		{"bad url scheme", `{"base_url": "ftp://x"}`, "", nil, ErrCodeInvalid},
		{"relative url", `{"results_url": "/spielsuche"}`, "", nil, ErrCodeInvalid},
		{"bad log level", `{"log_level": "loud"}`, "", nil, ErrCodeInvalid},
		{"empty context", `{"target_context": {}}`, "", nil, ErrCodeInvalid},
		{"bad port", "", "", map[string]string{EnvPort: "http"}, ErrCodeInvalid},
		{"bad browser", `{"browser": "firefox"}`, "", nil, ErrCodeInvalid},
		{"bad browser env", "", "", map[string]string{EnvBrowser: "lynx"}, ErrCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.body != "" {
				writeConfig(t, dir, tt.body)
			}
			_, err := Load(Options{Dir: dir, Path: tt.explicit, Getenv: env(tt.env)})
			if got := Code(err); got != tt.wantCode {
				t.Errorf("Code(err) = %q, want %q (err = %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(other, []byte(`{"team_prefix": "SC Staaken"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(Options{Dir: dir, Path: "other.json", Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TeamPrefix != "SC Staaken" {
		t.Errorf("TeamPrefix = %q", cfg.TeamPrefix)
	}
}

func TestLoad_Browser(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"browser": "Chrome", "chrome_url": "ws://127.0.0.1:9222/devtools/browser/abc"}`)
	cfg, err := Load(Options{Dir: dir, Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Browser != BrowserChrome || cfg.ChromeURL != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Errorf("Browser = %q ChromeURL = %q", cfg.Browser, cfg.ChromeURL)
	}

	cfg, err = Load(Options{Dir: dir, Getenv: env(map[string]string{EnvBrowser: "dryrun"})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Browser != BrowserDryRun {
		t.Errorf("Browser = %q, env should win", cfg.Browser)
	}
}

func TestLoad_ChromeHeadless(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{Dir: dir, Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChromeHeadless {
		t.Error("ChromeHeadless should default to false")
	}

	writeConfig(t, dir, `{"chrome_headless": true}`)
	cfg, err = Load(Options{Dir: dir, Getenv: env(nil)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.ChromeHeadless {
		t.Error("ChromeHeadless = false, want true from file")
	}

	cfg, err = Load(Options{Dir: dir, Getenv: env(map[string]string{EnvChromeHeadless: "false"})})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChromeHeadless {
		t.Error("ChromeHeadless = true, env should win")
	}

	_, err = Load(Options{Dir: dir, Getenv: env(map[string]string{EnvChromeHeadless: "sometimes"})})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Code != ErrCodeInvalid {
		t.Errorf("Load() error = %v, want %s", err, ErrCodeInvalid)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	writeDotEnv := func(t *testing.T, path, body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("fills unset variables", func(t *testing.T) {
		dir := t.TempDir()
		writeDotEnv(t, filepath.Join(dir, DotEnvName), "# portal login\nDFBNET_USERNAME=66.user\nDFBNET_PASSWORD=\"s3cret\"\nPORT=4100\n")
		cfg, err := Load(Options{Dir: dir, Getenv: env(map[string]string{EnvPort: "4000"})})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Username != "66.user" || cfg.Password != "s3cret" {
			t.Errorf("credentials = %q %q", cfg.Username, cfg.Password)
		}
		if cfg.ListenAddr != ":4000" {
			t.Errorf("ListenAddr = %q, process env should win over .env", cfg.ListenAddr)
		}
	})

	t.Run("explicit file", func(t *testing.T) {
		dir := t.TempDir()
		writeDotEnv(t, filepath.Join(dir, "local.env"), "DFBNET_BROWSER=chrome\n")
		cfg, err := Load(Options{Dir: dir, EnvFile: "local.env", Getenv: env(nil)})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Browser != BrowserChrome {
			t.Errorf("Browser = %q", cfg.Browser)
		}
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(Options{Dir: t.TempDir(), EnvFile: "missing.env", Getenv: env(nil)})
		if got := Code(err); got != ErrCodeNotFound {
			t.Errorf("Code(err) = %q, want %q (err = %v)", got, ErrCodeNotFound, err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		dir := t.TempDir()
		writeDotEnv(t, filepath.Join(dir, DotEnvName), "DFBNET_LOG_LEVEL=loud\n")
		_, err := Load(Options{Dir: dir, Getenv: env(nil)})
		if got := Code(err); got != ErrCodeInvalid {
			t.Errorf("Code(err) = %q, want %q (err = %v)", got, ErrCodeInvalid, err)
		}
	})
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Code: ErrCodeNotFound, Path: "x", Err: os.ErrNotExist}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Error should unwrap to its cause")
	}
	if Code(errors.New("plain")) != "" {
		t.Error("Code() of a plain error should be empty")
	}
	if err.Error() != `config_not_found: config file "x" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDefaultGroups_BuiltIn(t *testing.T) {
	groups := Default().DefaultGroups()
	want := referee.DefaultGroups(referee.DefaultTargetContext())
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("DefaultGroups() = %+v, want built-in", groups)
	}
}
