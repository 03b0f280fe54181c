package log

import (
	"fmt"
	"strings"
)

type LogLevel int

const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	Fatal
)

// levels maps every LogLevel to its label, terminal color and the syslog
// priority the console would tag the line with.
var levels = [...]struct {
	label    string
	color    string
	priority int
}{
	Debug: {"DEBUG", "\033[34m", 7},
	Info:  {"INFO", "\033[32m", 6},
	Warn:  {"WARN", "\033[33m", 4},
	Error: {"ERROR", "\033[31m", 3},
	Fatal: {"FATAL", "\033[35m", 2},
}

func (l LogLevel) valid() bool {
	return l >= Debug && l <= Fatal
}

func (l LogLevel) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levels[l].label
}

// Priority returns the syslog priority of the level (LOG_DEBUG = 7 ... LOG_CRIT = 2).
func (l LogLevel) Priority() int {
	if !l.valid() {
		return levels[Info].priority
	}
	return levels[l].priority
}

func (l LogLevel) color() string {
	if !l.valid() {
		return "\033[0m"
	}
	return levels[l].color
}

// Parse accepts the level labels as well as the syslog names used by the
// console ("err", "warning", "notice", "crit").
func Parse(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return Debug, nil
	case "info", "notice", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error", "err":
		return Error, nil
	case "fatal", "crit", "alert", "emerg":
		return Fatal, nil
	default:
		return Info, fmt.Errorf("log: invalid log level '%s'", level)
	}
}
