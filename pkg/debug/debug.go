// Package debug provides conditional debug logging for km.
//
// Debug logging is enabled by setting the KM_DEBUG environment variable:
//
//	KM_DEBUG=1 km --api http://localhost:8001
//
// Messages go to stderr (or the file named by KM_DEBUG_FILE, which is the
// useful choice while the full-screen viewer owns the terminal). When
// disabled, every function is a no-op.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("KM_DEBUG") != "" {
		SetEnabled(true)
	}
}

func newLogger() *log.Logger {
	var out io.Writer = os.Stderr
	if path := os.Getenv("KM_DEBUG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}
	return log.New(out, "[KM_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger()
	}
}

// SetOutput redirects debug output. Mainly for tests.
func SetOutput(w io.Writer) {
	logger = log.New(w, "[KM_DEBUG] ", 0)
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("loadKeywords")()
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
