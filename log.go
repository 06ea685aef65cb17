package gecho

import (
	"log"
	"os"
)

type (
	// Logger is the interface that wraps logging operations.
	Logger interface {
		// Errorf logs error information.
		// Arguments are handled in the manner of fmt.Printf.
		Errorf(format string, args ...interface{})
		// Infof logs informational messages such as connection counts.
		// Arguments are handled in the manner of fmt.Printf.
		Infof(format string, args ...interface{})
	}
	// BuiltinLogger implements Logger based on the standard log package.
	// A nil L logs through the standard logger.
	BuiltinLogger struct {
		L *log.Logger
	}
)

var (
	// DefaultLogger is the default Logger.
	DefaultLogger Logger = BuiltinLogger{L: log.New(os.Stderr, "", log.LstdFlags)}
)

// Errorf logs error information using the standard log package.
func (l BuiltinLogger) Errorf(format string, args ...interface{}) {
	l.printf(format, args...)
}

// Infof logs informational messages using the standard log package.
func (l BuiltinLogger) Infof(format string, args ...interface{}) {
	l.printf(format, args...)
}

func (l BuiltinLogger) printf(format string, args ...interface{}) {
	if l.L == nil {
		log.Printf(format, args...)
		return
	}
	l.L.Printf(format, args...)
}
