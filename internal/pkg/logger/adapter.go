package logger

import (
	"io"
	"log/slog"

	"stream_insight/internal/app/port"
)

// slogAdapter implements port.Logger on top of slog, so services never touch the global logger directly.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a port.Logger writing through the global logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewComponentLogger returns a port.Logger that tags every record with component=name.
func NewComponentLogger(name string) port.Logger {
	return &slogAdapter{l: current().With("component", name)}
}

// NewNopLogger returns a port.Logger that discards everything.
func NewNopLogger() port.Logger {
	return &slogAdapter{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *slogAdapter) logger() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	return current()
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger().Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger().Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger().Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger().Error(msg, args...)
}
