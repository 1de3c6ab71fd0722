// Package logging provides the application logger.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is a simple leveled logger that writes key-value pairs to the
// console.
type Logger struct {
	*log.Logger
}

// NewLogger creates a new Logger.
func NewLogger() *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

func render(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.Print("INFO: " + render(msg, args))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.Print("WARN: " + render(msg, args))
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.Print("ERROR: " + render(msg, args))
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.Print("DEBUG: " + render(msg, args))
}
