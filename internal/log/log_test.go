package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	if logger := New(Config{}); logger == nil {
		t.Fatal("New() returned nil")
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})
	logger.Info("turn finished", "session", "abc")

	output := buf.String()
	if !strings.Contains(output, "turn finished") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "session=abc") {
		t.Errorf("expected output to contain session=abc, got: %s", output)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{JSON: true})
	logger.Info("stream opened", "chunks", 3)

	output := buf.String()
	if !strings.Contains(output, `"msg":"stream opened"`) {
		t.Errorf("expected JSON output with msg field, got: %s", output)
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}

	// Should not panic
	logger.Info("discarded")
	logger.Error("discarded too")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Debug("debug line")
	logger.Info("info line")

	output := buf.String()
	if strings.Contains(output, "debug line") {
		t.Error("DEBUG message should be filtered out")
	}
	if !strings.Contains(output, "info line") {
		t.Error("INFO message should appear")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, Config{})
	logger.With("component", "attrs").Info("built")

	if got := buf.String(); !strings.Contains(got, "component=attrs") {
		t.Errorf("expected component attribute in output, got: %s", got)
	}
}
