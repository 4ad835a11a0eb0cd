package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("key", "a/b").Msg("shown")
	logger.Warnf("warned %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=a/b")
	assert.Contains(t, out, "warned 3")
}

func TestLoggerVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Debugf("details %s", "here")
	assert.Contains(t, buf.String(), "details here")
}

func TestRetryLogger(t *testing.T) {
	var buf bytes.Buffer
	l := retryLogger{logger: NewLogger(&buf, false)}

	l.Info("request", "url", "http://x")
	assert.Empty(t, buf.String())

	l.Warn("retrying", "attempt", 2)
	assert.Contains(t, buf.String(), "retrying")
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NopLogger().Error().Msg("discarded")
	})
}
