package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Process-wide leveled logger.
// Debug/Info/Warn/Error/Fatal in printf form plus *w variants that append
// key=value pairs, e.g. Infow("request", "status", 200).

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel maps a level name to a Level; unknown names yield LevelInfo.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects log output. It returns the previous writer's logger so
// tests can restore it.
func SetOutput(w io.Writer) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = log.New(w, "", 0)
	return prev
}

// Restore reinstates a logger returned by SetOutput.
func Restore(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

func header(l Level) string {
	return fmt.Sprintf("%s [%s] ", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(l.String()))
}

func output(l Level, msg string) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	logger.Print(header(l) + msg)
}

// fields renders alternating key/value pairs. A dangling key gets the value "?".
func fields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%v=", kv[i])
		if i+1 >= len(kv) {
			b.WriteByte('?')
			break
		}
		v := fmt.Sprint(kv[i+1])
		if strings.ContainsAny(v, " \t\"=") {
			v = fmt.Sprintf("%q", v)
		}
		b.WriteString(v)
	}
	return b.String()
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { output(LevelInfo, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { output(LevelError, fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	logger.Print(header(LevelFatal) + fmt.Sprintf(format, v...))
	mu.RUnlock()
	os.Exit(1)
}

func Debugw(msg string, kv ...interface{}) { output(LevelDebug, msg+fields(kv)) }
func Infow(msg string, kv ...interface{})  { output(LevelInfo, msg+fields(kv)) }
func Warnw(msg string, kv ...interface{})  { output(LevelWarn, msg+fields(kv)) }
func Errorw(msg string, kv ...interface{}) { output(LevelError, msg+fields(kv)) }

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { output(LevelDebug, v) }
func Info(v string)  { output(LevelInfo, v) }
func Warn(v string)  { output(LevelWarn, v) }
func Error(v string) { output(LevelError, v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}
