package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter("warn", &buf)
	l.Info("dropped")
	l.Warnf("kept %d", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "kept 1" || entry["level"] != "WARN" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter("info", &buf).With(slog.String("request_id", "abc"))
	l.Info("hello")
	if !strings.Contains(buf.String(), `"request_id":"abc"`) {
		t.Fatalf("missing attribute in %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debug("x")
	l.Info("x")
	l.Infof("x %d", 1)
	if l.With("k", "v") != nil {
		t.Fatal("With on nil logger should stay nil")
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	l := New("info", dir)
	l.Info("flight analyzed", slog.Int("fixes", 42))

	if l.LogFile != filepath.Join(dir, "routeapi.slog") {
		t.Fatalf("unexpected log file %s", l.LogFile)
	}
	data, err := os.ReadFile(l.LogFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"fixes":42`) {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "warn": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
