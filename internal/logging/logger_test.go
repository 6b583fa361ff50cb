package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func restoreDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestSetupWriter_JSON(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "warn", "json")
	slog.Info("dropped")
	slog.Warn("kept", "kind", "cards")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["kind"] != "cards" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetupWriter_Text(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer

	SetupWriter(&buf, "info", "text")
	slog.Info("import finished", "records", 4)

	if got := buf.String(); !strings.Contains(got, "msg=\"import finished\"") || !strings.Contains(got, "records=4") {
		t.Errorf("text output = %q", got)
	}
}

func TestWithFields_RequestID(t *testing.T) {
	restoreDefault(t)
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "import_id", "imp-1").Info("import started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["request_id"] != "req-42" || entry["import_id"] != "imp-1" {
		t.Errorf("entry = %v, want request_id and import_id", entry)
	}
}
