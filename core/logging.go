package core

// Logger logs application events, optionally reporting them to an external
// error-tracking service. Implementations accept trailing args of any type;
// a user value among them identifies the person on the reported event.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
