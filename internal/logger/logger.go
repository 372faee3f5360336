package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger creates a new zerolog logger with console output
func NewLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return log.Output(output).With().Timestamp().Logger()
}

// NewLoggerWithLevel creates a new logger with a specific log level
func NewLoggerWithLevel(level zerolog.Level) zerolog.Logger {
	logger := NewLogger()
	return logger.Level(level)
}

// ParseLevel maps a config value such as "debug" to a zerolog level.
// Empty or unknown values fall back to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
