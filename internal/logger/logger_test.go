package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" warn ":   zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.InfoLevel,
		"chatty":   zerolog.InfoLevel,
		"info":     zerolog.InfoLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLoggerWithLevel(t *testing.T) {
	l := NewLoggerWithLevel(zerolog.WarnLevel)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}
