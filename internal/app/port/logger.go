package port

// Logger defines the logging interface services depend on.
// args are alternating key/value pairs, as in log/slog.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
