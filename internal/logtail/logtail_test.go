package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ava.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("level=INFO msg=line%d", i))
	}
	logPath := writeLog(t, all)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: all},
		{name: "read all (negative)", maxLines: -1, expected: all},
		{name: "read partial (5)", maxLines: 5, expected: all[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: all},
		{name: "read more than exists (20)", maxLines: 20, expected: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, Options{Lines: tt.maxLines})
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_Filters(t *testing.T) {
	logPath := writeLog(t, []string{
		`time=t1 level=DEBUG msg="served from cache" kind=conversation`,
		`time=t2 level=INFO msg="retrying operation" slot=conversationData.conversations`,
		`time=t3 level=WARN msg="operation failed" slot=chatData.chats[3]`,
		`not a record`,
		`time=t4 level=ERROR msg="shutdown failed"`,
		`time=t5 level=WARN msg="operation failed" slot=conversationData.conversations`,
	})

	got, err := Read(logPath, Options{MinLevel: slog.LevelWarn})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 4 || got[1] != "not a record" {
		t.Fatalf("Read(MinLevel=WARN) = %q, want 3 records and the unparsed line", got)
	}

	got, err = Read(logPath, Options{MinLevel: slog.LevelDebug, Match: "slot=conversationData.conversations", Lines: 1})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "time=t5") {
		t.Fatalf("Read(Match, Lines=1) = %q, want the t5 record", got)
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), Options{Lines: 10})
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v, want nil, nil", got, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line  string
		want  slog.Level
		found bool
	}{
		{`time=x level=DEBUG msg=a`, slog.LevelDebug, true},
		{`level=WARN msg=b`, slog.LevelWarn, true},
		{`time=x level=ERROR+2 msg=c`, slog.LevelError + 2, true},
		{`time=x msg=d`, 0, false},
		{`level=LOUD`, 0, false},
	}
	for _, tt := range tests {
		got, found := Level(tt.line)
		if got != tt.want || found != tt.found {
			t.Errorf("Level(%q) = %v, %v, want %v, %v", tt.line, got, found, tt.want, tt.found)
		}
	}
}
