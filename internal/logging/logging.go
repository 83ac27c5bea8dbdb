// Package logging provides leveled, optionally JSON-formatted logging for
// the loader and its CLI.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the uppercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name. "warning" is accepted as an alias for
// warn; matching is case-insensitive but exact otherwise.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	mu     sync.Mutex
	level  = LevelInfo
	format = "text"
	out    io.Writer
)

// SetLevel sets the minimum severity that gets written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum severity.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetOutput redirects log output. nil restores the default (stderr).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetFormat selects "text" or "json" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f == "json" {
		format = "json"
	} else {
		format = "text"
	}
}

// Debug logs at debug level.
func Debug(msg string, args ...interface{}) { write(LevelDebug, msg, args...) }

// Info logs at info level.
func Info(msg string, args ...interface{}) { write(LevelInfo, msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...interface{}) { write(LevelWarn, msg, args...) }

// Error logs at error level.
func Error(msg string, args ...interface{}) { write(LevelError, msg, args...) }

func write(l Level, msg string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	w := out
	if w == nil {
		w = os.Stderr
	}
	rendered := fmt.Sprintf(msg, args...)
	now := time.Now()

	if format == "json" {
		entry := map[string]string{
			"ts":    now.Format(time.RFC3339),
			"level": strings.ToLower(l.String()),
			"msg":   rendered,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(w, "%s [%s] %s\n", now.Format("2006-01-02 15:04:05"), l, rendered)
			return
		}
		fmt.Fprintf(w, "%s\n", b)
		return
	}
	fmt.Fprintf(w, "%s [%s] %s\n", now.Format("2006-01-02 15:04:05"), l, rendered)
}
