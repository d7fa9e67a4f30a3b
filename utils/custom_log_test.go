package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelTrace)
	Trace(l, "enter", "op", "sort")
	l.Warn("careful")
	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "op=sort")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "source=custom_log_test.go")
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, slog.LevelInfo)
	Trace(l, "hidden")
	l.Debug("hidden too")
	assert.Empty(t, buf.String())
}

func TestColorPrint(t *testing.T) {
	SetColorPrint(true)
	defer SetColorPrint(false)
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Error("boom")
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, colorRed), out)
	assert.True(t, strings.HasSuffix(out, colorReset+"\n"), out)
	assert.Contains(t, out, "level=ERRO")
}
