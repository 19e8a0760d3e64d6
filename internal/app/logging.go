package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// openLogger builds the application logger. When w is nil the log goes to
// path, since the TUI owns the terminal.
func openLogger(level slog.Level, path string, w io.Writer) (*slog.Logger, func() error, error) {
	if w != nil {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})), file.Close, nil
}
