package internal

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger builds the diagnostics logger. format is "console" (human
// readable) or "json". Every line carries the run's id.
func NewLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), &ConfigError{Field: "log.level", Value: level, Err: err}
		}
		lvl = parsed
	}

	out := w
	switch format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	case "json":
	default:
		return zerolog.Nop(), &ConfigError{Field: "log.format", Value: format, Err: errUnknownLogFormat}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger(), nil
}

// ForWorkflow tags a logger with the workflow it reports on.
func ForWorkflow(log zerolog.Logger, workflow string) zerolog.Logger {
	return log.With().Str("workflow", workflow).Logger()
}
