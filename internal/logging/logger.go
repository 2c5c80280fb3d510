// Package logging builds the hclog loggers used across paperseal.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// LevelEnvVar overrides the default log level.
	LevelEnvVar = "PAPERSEAL_LOG_LEVEL"
	// JSONEnvVar switches output to JSON when set to "1".
	JSONEnvVar = "PAPERSEAL_JSON_LOG"

	DefaultLevel = "warn"
)

// NewLogger creates a new hclog logger with standard settings.
// Logs go to stderr when output is nil, so they never mix with a PDF on stdout.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: os.Getenv(JSONEnvVar) == "1",
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// GetLogLevel returns the configured log level from environment.
func GetLogLevel() string {
	level := os.Getenv(LevelEnvVar)
	if level == "" {
		level = DefaultLevel
	}
	return level
}

// ValidateLevel rejects names hclog does not know.
func ValidateLevel(level string) error {
	if hclog.LevelFromString(level) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q (want trace, debug, info, warn, error or off)", level)
	}
	return nil
}
