// Package logging wires zerolog for the ntxbuild binaries.
package logging

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type logKey struct{}

var verboseErrors bool

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, verboseErrors)
	}
}

// New builds a console logger at the given level. Stack traces are attached
// to error fields only at debug level and below.
func New(out io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	verboseErrors = level <= zerolog.DebugLevel
	w := NewConsoleWriter(out)
	w.NoColor = noColor
	return zerolog.New(w).Level(level)
}

// WithLogger attaches the given logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// From returns the logger stored in ctx, or a disabled logger.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(logKey{}).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	nop := zerolog.Nop()
	return &nop
}

// Component returns a child logger tagged with the component name.
func Component(ctx context.Context, name string) zerolog.Logger {
	return From(ctx).With().Str("component", name).Logger()
}
