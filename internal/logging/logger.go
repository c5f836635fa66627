// Package logging builds the process logger and carries request-scoped
// entries through context.Context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type entryKey struct{}

// New creates the process logger. Production uses JSON output; other
// environments use the text formatter.
func New(env, level string) *logrus.Logger {
	return NewWithOutput(env, level, os.Stdout)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(env, level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logger.WithField("log_level", level).Warn("invalid LOG_LEVEL, using info")
	}
	logger.SetLevel(lvl)

	return logger
}

// WithEntry returns a copy of ctx carrying entry.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, entry)
}

// FromContext returns the request-scoped entry stored by the request-id
// middleware, or an entry on the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok && entry != nil {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
