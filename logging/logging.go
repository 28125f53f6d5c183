// Package logging holds the process-wide leveled loggers. Everything goes to
// stderr since stdout belongs to the bar protocol.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level orders the loggers from most to least severe.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	ErrorLog = newLogger("ERROR ")
	WarnLog  = newLogger("WARN ")
	InfoLog  = newLogger("INFO ")
	DebugLog = newLogger("DEBUG ")
)

func newLogger(prefix string) *log.Logger {
	return log.New(os.Stderr, prefix, log.LstdFlags|log.Lmsgprefix)
}

// ParseLevel maps a level name to a Level. Unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Initialize points every logger at or above lvl to w and silences the rest.
func Initialize(w io.Writer, lvl Level) {
	set := func(l *log.Logger, at Level) {
		if at <= lvl {
			l.SetOutput(w)
		} else {
			l.SetOutput(io.Discard)
		}
	}
	set(ErrorLog, LevelError)
	set(WarnLog, LevelWarn)
	set(InfoLog, LevelInfo)
	set(DebugLog, LevelDebug)
}

// InitFromEnv reads ISTAT_LOG and initializes the loggers on stderr.
func InitFromEnv() {
	Initialize(os.Stderr, ParseLevel(os.Getenv("ISTAT_LOG")))
}
