package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"bogus", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	logger.Debugf("quiet")
	logger.Infof("quiet")
	logger.Warnf("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "loud") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf, Prefix: "markwright"})

	logger.WithComponent("plugin").Infof("hello")
	if out := buf.String(); !strings.Contains(out, "{component=plugin}") {
		t.Errorf("component tag missing: %q", out)
	}

	// The parent logger stays untagged.
	buf.Reset()
	logger.Infof("hello")
	if out := buf.String(); strings.Contains(out, "component=") {
		t.Errorf("parent logger tagged: %q", out)
	}
}

func TestNullLoggerSilent(t *testing.T) {
	NullLogger.Debugf("x")
	NullLogger.Errorf("x")
}
