// Package logger constructs the zerolog loggers used by the command
// line tools
package logger

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the named level. If console is
// true, entries are written in a human-readable format rather than as
// JSON.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "new: invalid level %q", level)
	}

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// WithRun returns a child of l tagged with a new random run ID, and
// the ID itself
func WithRun(l zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.New().String()
	return l.With().Str("run", id).Logger(), id
}
