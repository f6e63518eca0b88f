package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"TRACE":    TraceLevel,
		"debug":    zapcore.DebugLevel,
		"INFO":     zapcore.InfoLevel,
		"WARNING":  zapcore.WarnLevel,
		"ERROR":    zapcore.ErrorLevel,
		"CRITICAL": zapcore.ErrorLevel,
		"bogus":    zapcore.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestTraceOnlyAtTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "DEBUG")
	Trace(logger, "hidden frame")
	logger.Debug("shown")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "hidden frame")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger = NewWithWriter(&buf, "TRACE")
	Trace(logger, "frame line", zap.String("iface", "wlan0"))
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "TRACE")
	assert.Contains(t, buf.String(), "frame line")
	assert.Contains(t, buf.String(), "wlan0")
}
