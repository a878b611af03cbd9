package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel converts a log-level setting to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch s {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("%w: log-level %q", ErrInvalid, s)
}

// NewLogger builds the process logger at the configured level. console
// selects the human-readable writer. The zerolog global level is not touched.
func (c *Config) NewLogger(w io.Writer, console bool) zerolog.Logger {
	level, err := ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
