package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.PageSize != defaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, defaultPageSize)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Fatalf("RefreshInterval = %v, want %v", cfg.RefreshInterval, time.Minute)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
	if cfg.CachePath() != filepath.Join(wantDataDir, "cache.db") {
		t.Fatalf("CachePath = %q, want %q", cfg.CachePath(), filepath.Join(wantDataDir, "cache.db"))
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_url = "  https://api.example.com/v1  "
data_dir = "  ~/.ava-data  "
log_level = "DEBUG"
page_size = 5
request_holdback_ms = 0
refresh_seconds = 0
metrics_addr = " 127.0.0.1:9100 "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://api.example.com/v1" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "https://api.example.com/v1")
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("Level = %v, want %v", cfg.Level(), slog.LevelDebug)
	}
	if cfg.PageSize != 5 {
		t.Fatalf("PageSize = %d, want 5", cfg.PageSize)
	}
	if cfg.RequestHoldBack != 0 {
		t.Fatalf("RequestHoldBack = %v, want 0", cfg.RequestHoldBack)
	}
	if cfg.RefreshInterval != 0 {
		t.Fatalf("RefreshInterval = %v, want 0", cfg.RefreshInterval)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Fatalf("MetricsAddr = %q, want %q", cfg.MetricsAddr, "127.0.0.1:9100")
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "ava.log") {
		t.Fatalf("LogPath = %q, want %q", cfg.LogPath(), filepath.Join(cfg.DataDir, "ava.log"))
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
api_url = "   "
data_dir = ""
log_level = ""
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Fatalf("Level = %v, want %v", cfg.Level(), slog.LevelInfo)
	}
	if cfg.RequestHoldBack != defaultHoldBackMS*time.Millisecond {
		t.Fatalf("RequestHoldBack = %v, want %v", cfg.RequestHoldBack, defaultHoldBackMS*time.Millisecond)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "toml", body: `api_url = [`, want: "parse config"},
		{name: "page size", body: `page_size = -1`, want: "page_size"},
		{name: "hold back", body: `request_holdback_ms = -5`, want: "request_holdback_ms"},
		{name: "refresh", body: `refresh_seconds = -1`, want: "refresh_seconds"},
		{name: "log level", body: `log_level = "loud"`, want: "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestCachePath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.CachePath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("CachePath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/cache.db")) {
		t.Fatalf("CachePath = %q, want it to end with /cache.db", got)
	}
}
