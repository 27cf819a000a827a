package interfaces

import "context"

// Logger is the leveled logging contract the layout runtime writes to.
// The method set matches github.com/goliatone/go-logger, so hosts already
// using that package can hand their logger in directly; anything else
// needs only a thin wrapper over these seven methods.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by name. The runtime asks for one
// logger per module (presentations, cache, mirror, http); a provider is
// free to return a shared instance or a scoped child per name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional upgrade: providers that implement it return
// loggers carrying a fixed set of structured fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
