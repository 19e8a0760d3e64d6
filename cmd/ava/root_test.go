package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeAPI(w http.ResponseWriter, r *http.Request) {
	var data any
	switch r.URL.Path {
	case "/user/login":
		data = map[string]any{
			"auth":  true,
			"token": "tok-42",
			"user":  map[string]any{"userID": 42, "email": "a@b.com", "nickName": "ann"},
		}
	case "/conversation/getConversations":
		data = []map[string]any{
			{"conversationID": 1, "conversationName": "groceries"},
			{"conversationID": 2, "conversationName": "travel"},
		}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "ok", "data": data})
}

func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("api_url = %q\ndata_dir = %q\nrequest_holdback_ms = 0\n", apiURL, filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func TestConversationsListRequiresLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(fakeAPI))
	t.Cleanup(server.Close)
	cfg := writeConfig(t, server.URL)

	_, err := execute(t, "--config", cfg, "conversations", "list")
	if !errors.Is(err, errSignedOut) {
		t.Fatalf("err = %v, want %v", err, errSignedOut)
	}
}

func TestLoginThenListConversations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(fakeAPI))
	t.Cleanup(server.Close)
	cfg := writeConfig(t, server.URL)

	out, err := execute(t, "--config", cfg, "login", "--email", "a@b.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !strings.Contains(out, "signed in as ann (id 42)") {
		t.Fatalf("login output = %q", out)
	}

	out, err = execute(t, "--config", cfg, "conversations", "list")
	if err != nil {
		t.Fatalf("conversations list returned error: %v", err)
	}
	for _, want := range []string{"groceries", "travel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("conversations list output missing %q:\n%s", want, out)
		}
	}
}

func TestDeleteRejectsBadID(t *testing.T) {
	_, err := execute(t, "--config", writeConfig(t, "http://127.0.0.1:1/"), "journals", "delete", "abc")
	if err == nil || !strings.Contains(err.Error(), `invalid id "abc"`) {
		t.Fatalf("err = %v, want invalid id", err)
	}
}

func TestLogsFiltersBySlotAndLevel(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1/")
	dataDir := filepath.Join(filepath.Dir(cfg), "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	log := strings.Join([]string{
		`time=2025-10-08T21:01:05Z level=INFO msg="operation finished" slot=conversationData.conversations`,
		`time=2025-10-08T21:01:06Z level=WARN msg="operation failed" slot=conversationData.conversations`,
		`time=2025-10-08T21:01:07Z level=WARN msg="operation failed" slot=journalData.journals`,
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dataDir, "ava.log"), []byte(log), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := execute(t, "--config", cfg, "logs", "--level", "warn", "--slot", "conversationData.conversations")
	if err != nil {
		t.Fatalf("logs returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "21:01:06") {
		t.Fatalf("logs output = %q, want only the conversation warning", out)
	}
}

func TestVerboseRejectedForTerminalInterface(t *testing.T) {
	_, err := execute(t, "--verbose")
	if !errors.Is(err, errVerboseTerminal) {
		t.Fatalf("err = %v, want %v", err, errVerboseTerminal)
	}
}
