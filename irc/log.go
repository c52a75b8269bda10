package irc

// SLogger abstracts the [*slog.Logger] behavior.
//
// Two levels are used:
//   - Info for lifecycle events (connect, handshake, state changes, teardown)
//   - Debug for per-line events (line in, line out, unrecognized input)
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// DefaultSLogger returns a logger that discards everything.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

type discardSLogger struct{}

var _ SLogger = discardSLogger{}

// Debug implements [SLogger].
func (discardSLogger) Debug(msg string, args ...any) {}

// Info implements [SLogger].
func (discardSLogger) Info(msg string, args ...any) {}
