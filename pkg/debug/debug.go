// Package debug provides conditional debug logging for the galaxy tools.
//
// Debug logging is enabled by setting FG_DEBUG:
//
//	FG_DEBUG=1 galaxy snapshot Abricot -o abricot.png
//
// When enabled, messages go to stderr with timestamps; when disabled every
// function is a no-op. SetOutput redirects the log, which the TUI uses to
// keep stderr clean while the alt screen is active.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[FG_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("FG_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled turns debug logging on or off.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput sends debug output to w. It does not enable logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

func printf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	printf(format, args...)
}

// LogTiming writes how long name took.
func LogTiming(name string, d time.Duration) {
	printf("%s took %v", name, d)
}

// LogIf writes a debug message only if cond holds.
func LogIf(cond bool, format string, args ...any) {
	if cond {
		printf(format, args...)
	}
}

// LogEnterExit logs entry now and exit with timing when the returned
// function runs:
//
//	defer debug.LogEnterExit("session.Rebuild")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	printf("-> %s", name)
	start := time.Now()
	return func() {
		printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	printf("%s: %T = %+v", name, v, v)
}
