package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

// NewLogger sets the global level and returns a logger writing JSON, or
// human-readable lines when format is "console".
func NewLogger(level, format string) *Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(out io.Writer, level, format string) *Logger {
	zerolog.SetGlobalLevel(parseLevel(level))
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return &Logger{zl: zerolog.New(out).With().Timestamp().Logger()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop discards everything; used by tests and by the CLI when quiet.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l *Logger) Error(msg string) {
	l.zl.Error().Msg(msg)
}

func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// With returns a child logger carrying one extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}
