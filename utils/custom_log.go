package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LevelTrace sits below slog.LevelDebug and is used for operation entry/exit.
const LevelTrace slog.Level = -8

var (
	_colorPrint = false
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// SetColorPrint toggles ANSI colours for records of loggers built
// afterwards by NewLogger.
func SetColorPrint(enable bool) {
	_colorPrint = enable
}

func levelName(level slog.Level) string {
	switch {
	case level <= LevelTrace:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERRO"
	}
}

// colorWriter paints each record line by its level.
type colorWriter struct {
	w io.Writer
}

func (c colorWriter) Write(p []byte) (int, error) {
	color := colorGreen
	switch {
	case bytes.Contains(p, []byte("level=ERRO")):
		color = colorRed
	case bytes.Contains(p, []byte("level=WARN")):
		color = colorYellow
	case bytes.Contains(p, []byte("level=DEBUG")), bytes.Contains(p, []byte("level=TRACE")):
		color = colorGray
	}
	line := bytes.TrimSuffix(p, []byte("\n"))
	buf := make([]byte, 0, len(line)+len(color)+len(colorReset)+1)
	buf = append(buf, color...)
	buf = append(buf, line...)
	buf = append(buf, colorReset...)
	buf = append(buf, '\n')
	if _, err := c.w.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewLogger returns a text logger writing to w that drops records below level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if _colorPrint {
		w = colorWriter{w: w}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Value = slog.StringValue(levelName(attr.Value.Any().(slog.Level)))
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Trace logs msg at LevelTrace on l.
func Trace(l *slog.Logger, msg string, args ...any) {
	if l.Enabled(context.Background(), LevelTrace) {
		l.Log(context.Background(), LevelTrace, msg, args...)
	}
}

func LogInfo(format string, v ...interface{}) {
	slog.Default().Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...interface{}) {
	slog.Default().Warn(fmt.Sprintf(format, v...))
}

func LogErro(format string, v ...interface{}) {
	slog.Default().Error(fmt.Sprintf(format, v...))
}

func LogFatal(format string, v ...interface{}) {
	slog.Default().Error("FATAL " + fmt.Sprintf(format, v...))
	os.Exit(1)
}
