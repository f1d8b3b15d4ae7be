package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: &buf,
	})

	logger.Info().Str("endpoint", "/pokemon/1").Msg("test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}

	if entry["message"] != "test message" {
		t.Errorf("message = %v, want %q", entry["message"], "test message")
	}
	if entry["endpoint"] != "/pokemon/1" {
		t.Errorf("endpoint = %v, want %q", entry["endpoint"], "/pokemon/1")
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected timestamp field in log output")
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelWarn,
		Output: &buf,
	})

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Messages below warn level should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("Warn message missing from output:\n%s", out)
	}
}

func TestNewLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelDebug, Output: &buf})

	logger := NewLogger("repository")
	logger.Info().Msg("component test")

	if !strings.Contains(buf.String(), `"component":"repository"`) {
		t.Errorf("Expected component field in output:\n%s", buf.String())
	}
}
