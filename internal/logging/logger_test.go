package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Setenv(JSONEnvVar, "")
	var buf bytes.Buffer
	logger := NewLogger("paperseal", "info", &buf)

	logger.Debug("hidden")
	logger.Info("shown", "bytes", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "bytes=42") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "paperseal") {
		t.Errorf("logger name missing: %q", out)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv(JSONEnvVar, "1")
	var buf bytes.Buffer
	NewLogger("paperseal", "warn", &buf).Warn("careful")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv(LevelEnvVar, "")
	if got := GetLogLevel(); got != DefaultLevel {
		t.Errorf("got %q, want %q", got, DefaultLevel)
	}

	t.Setenv(LevelEnvVar, "debug")
	if got := GetLogLevel(); got != "debug" {
		t.Errorf("got %q, want debug", got)
	}
}

func TestValidateLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", "off", "WARN"} {
		if err := ValidateLevel(level); err != nil {
			t.Errorf("ValidateLevel(%q) = %v", level, err)
		}
	}
	if err := ValidateLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
