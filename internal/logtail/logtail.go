package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Options select which lines Read returns.
type Options struct {
	// Lines caps the result to the last n matching lines; n <= 0 keeps all.
	Lines int
	// MinLevel drops lines below this level; the zero value is info. Lines
	// without a level are kept.
	MinLevel slog.Level
	// Match keeps only lines containing this substring.
	Match string
}

// Read returns the matching lines at the end of the log file at path. A
// missing file yields no lines.
func Read(path string, opts Options) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if opts.Lines <= 0 {
		var lines []string
		for scanner.Scan() {
			if line := scanner.Text(); keep(line, opts) {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, opts.Lines)
	idx, count := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !keep(line, opts) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % opts.Lines
		count = min(count+1, opts.Lines)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == opts.Lines {
		for i := range count {
			lines[i] = ring[(idx+i)%opts.Lines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func keep(line string, opts Options) bool {
	if opts.Match != "" && !strings.Contains(line, opts.Match) {
		return false
	}
	if level, ok := Level(line); ok && level < opts.MinLevel {
		return false
	}
	return true
}

// Level extracts the level=... attribute of a text-handler log line.
func Level(line string) (slog.Level, bool) {
	_, rest, found := strings.Cut(line, "level=")
	if !found {
		return 0, false
	}
	value, _, _ := strings.Cut(rest, " ")
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, false
	}
	return level, true
}
