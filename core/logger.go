package core

// Logger is any service that can log leveled messages.
// Error implementations are expected to pick up an error and a user.Principal
// from args when present.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
