package commands

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger adapts a zerolog.Logger to scheduler.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger writes human-readable logs to out. Debug messages, which include
// every HTTP request, are only emitted when verbose is set.
func NewLogger(out io.Writer, verbose bool) *Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(level).
		With().
		Timestamp().
		Str("component", "scheduler-cli").
		Logger()

	return &Logger{logger: logger}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
