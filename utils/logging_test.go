package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn)

	logger.Debug("debug hidden")
	logger.Info("info hidden")
	logger.Warn("warn shown")
	logger.Error("error shown")

	out := buf.String()
	assert.NotContains(t, out, "debug hidden")
	assert.NotContains(t, out, "info hidden")
	assert.Contains(t, out, "warn shown")
	assert.Contains(t, out, "error shown")
}

func TestDefaultLoggerWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelError)
	child := logger.With("session_id", "abc")

	child.Info("before")
	logger.SetLevel(LogLevelDebug)
	child.Info("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
	assert.Contains(t, out, "session_id=abc")
}

func TestLogLevelText(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"off", LogLevelOff},
		{"ERROR", LogLevelError},
		{"warning", LogLevelWarn},
		{" info ", LogLevelInfo},
		{"Debug", LogLevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var l LogLevel
			require.NoError(t, l.UnmarshalText([]byte(tt.in)))
			assert.Equal(t, tt.want, l)

			text, err := l.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), string(text))
		})
	}

	var l LogLevel
	assert.Error(t, l.UnmarshalText([]byte("verbose")))
	assert.Equal(t, "LogLevel(9)", LogLevel(9).String())
}

func TestLoggerImplementations(t *testing.T) {
	var _ Logger = NewLogger(LogLevelInfo)
	var _ Logger = NewNopLogger()
	var _ Logger = &MockLogger{}

	nop := NewNopLogger()
	nop.Debug("x")
	nop.Info("x")
	nop.Warn("x")
	nop.Error("x")
	nop.SetLevel(LogLevelDebug)
	assert.Equal(t, nop, nop.With("k", "v"))
}

func TestDefaultLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelOff)

	logger.Error("silenced")
	assert.Empty(t, buf.String())

	logger.SetLevel(LogLevelError)
	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}
