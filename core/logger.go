package core

// Logger is the logging contract used across the client.
// args may contain errors, maps and the current session user; implementations
// decide how to render or report each.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
