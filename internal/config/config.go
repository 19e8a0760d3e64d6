package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL          string
	DataDir         string
	LogLevel        string
	PageSize        int
	RequestHoldBack time.Duration
	RefreshInterval time.Duration
	MetricsAddr     string
}

const (
	defaultConfigPath     = "~/.config/ava/config.toml"
	defaultDataDir        = "~/.local/share/ava"
	defaultAPIURL         = "http://127.0.0.1:3000/"
	defaultLogLevel       = "info"
	defaultPageSize       = 20
	defaultHoldBackMS     = 500
	defaultRefreshSeconds = 60
	cacheFileName         = "cache.db"
	logFileName           = "ava.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		DataDir:         mustExpand(defaultDataDir),
		LogLevel:        defaultLogLevel,
		PageSize:        defaultPageSize,
		RequestHoldBack: defaultHoldBackMS * time.Millisecond,
		RefreshInterval: defaultRefreshSeconds * time.Second,
	}
}

// Load reads the config at path, or the default path when empty. A missing
// file yields the defaults; blank values fall back individually.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL            string `toml:"api_url"`
		DataDir           string `toml:"data_dir"`
		LogLevel          string `toml:"log_level"`
		PageSize          *int   `toml:"page_size"`
		RequestHoldBackMS *int   `toml:"request_holdback_ms"`
		RefreshSeconds    *int   `toml:"refresh_seconds"`
		MetricsAddr       string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if raw.PageSize != nil {
		if *raw.PageSize < 0 {
			return Config{}, fmt.Errorf("parse config: page_size must not be negative")
		}
		cfg.PageSize = *raw.PageSize
	}
	if raw.RequestHoldBackMS != nil {
		if *raw.RequestHoldBackMS < 0 {
			return Config{}, fmt.Errorf("parse config: request_holdback_ms must not be negative")
		}
		cfg.RequestHoldBack = time.Duration(*raw.RequestHoldBackMS) * time.Millisecond
	}
	if raw.RefreshSeconds != nil {
		if *raw.RefreshSeconds < 0 {
			return Config{}, fmt.Errorf("parse config: refresh_seconds must not be negative")
		}
		cfg.RefreshInterval = time.Duration(*raw.RefreshSeconds) * time.Second
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// CachePath returns the path of the local cache database.
func (c Config) CachePath() string {
	return filepath.Join(c.dataDir(), cacheFileName)
}

// LogPath returns the path of the log file written while the TUI runs.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), logFileName)
}

// Level returns the configured slog level, info when unset or unknown.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
