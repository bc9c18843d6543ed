package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogAdapter_KeyValueArgsBecomeAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.Info("workflow started", "workflow_id", "wf-1", "steps", 3)

	out := buf.String()
	assert.Contains(t, out, `msg="workflow started"`)
	assert.Contains(t, out, "workflow_id=wf-1")
	assert.Contains(t, out, "steps=3")
	// The message itself is untouched; the pairs must not be interpolated
	// into it printf-style.
	assert.NotContains(t, out, "EXTRA")
}

func TestOrchestraLogger_FormatsPrintfStyle(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "text", Output: &buf})

	logger.Info("processed %d steps for %s", 2, "wf-1")

	assert.Contains(t, buf.String(), "processed 2 steps for wf-1")
}
