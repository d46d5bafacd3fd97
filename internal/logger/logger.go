// Package logger provides verbose logging for compassx.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow provider selection, stream
// lifecycle and declination refreshes.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf("DEBUG", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf("INFO", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf("WARN", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	writef("ERROR", "", format, args...)
}

// Logger tags every line with a component name.
// The zero value logs without a component.
type Logger struct {
	component string
}

// Named returns a logger for a component, e.g. "stream" or "rotation".
func Named(component string) *Logger {
	return &Logger{component: component}
}

// Debug prints a component message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	logf("DEBUG", l.name(), format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	logf("INFO", l.name(), format, args...)
}

// Warn prints a component warning if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	logf("WARN", l.name(), format, args...)
}

func (l *Logger) name() string {
	if l == nil {
		return ""
	}
	return l.component
}

func logf(level, component, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		writef(level, component, format, args...)
	}
}

// writef formats one line (caller must hold lock).
func writef(level, component, format string, args ...any) {
	if component != "" {
		fmt.Fprintf(output, "["+level+"] "+component+": "+format+"\n", args...)
		return
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}
