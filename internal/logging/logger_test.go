package logging_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/esgate/internal/logging"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false)

	logger.Debug("hidden")
	logger.Warn("audit record failed", "error", errors.New("redis down"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `err="redis down"`)
	assert.NotContains(t, out, "error=")
}

func TestNewWithWriter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logging.NewWithWriter(&buf, true).Debug("tool_call", "tool", "search")
	assert.Contains(t, buf.String(), "level=DEBUG msg=tool_call tool=search")
}

func TestNewNop(t *testing.T) {
	assert.False(t, logging.NewNop().Enabled(context.Background(), slog.LevelError))
}
