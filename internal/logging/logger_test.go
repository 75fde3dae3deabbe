package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var cl *componentLogger
	var logger Logger = cl
	require.True(t, IsNil(logger))

	safe := OrNop(logger)
	require.False(t, IsNil(safe))
	safe.Info("hello %s", "world") // should not panic
}

func TestComponentLoggerFormatsMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(Config{Level: "info", Format: "text", Output: buf})
	defer Configure(Config{})

	logger := NewComponentLogger("test")
	logger.Info("hello %s", "world")

	assert.Contains(t, buf.String(), "hello world")
	assert.Contains(t, buf.String(), "component=test")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(Config{Level: "warn", Format: "text", Output: buf})
	defer Configure(Config{})

	logger := NewComponentLogger("test")
	logger.Info("should be dropped")
	logger.Warn("should be kept")

	assert.NotContains(t, buf.String(), "should be dropped")
	assert.Contains(t, buf.String(), "should be kept")
}

func TestWithAddsAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(Config{Level: "info", Format: "text", Output: buf})
	defer Configure(Config{})

	logger := With(NewComponentLogger("test"), "request_id", "abc-123")
	logger.Info("tagged")

	assert.Contains(t, buf.String(), "request_id=abc-123")
}
