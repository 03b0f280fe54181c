package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes leveled lines tagged with a component name. Loggers derived
// with Named share their output with the parent.
type Logger struct {
	out *output

	Name  string
	Level LogLevel
	JSON  bool
}

// output is the destination shared by a logger and everything derived from it.
type output struct {
	mu      sync.Mutex
	writer  io.Writer
	color   bool
	started time.Time
}

// Rotation bounds the size of the log file.
var Rotation = struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
}{
	MaxSize:    16,
	MaxBackups: 3,
	MaxAge:     7,
}

type logEntry struct {
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Level     string  `json:"level"`
	Priority  int     `json:"priority"`
	Service   string  `json:"service,omitempty"`
	Message   string  `json:"message"`
}

// NewLogger creates a logger writing to stdout unless noTerminal is set, and
// to file with rotation when file is not empty.
func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	out := &output{
		started: time.Now(),
	}

	var writers []io.Writer
	if !noTerminal || file == "" {
		writers = append(writers, os.Stdout)
		out.color = !noTerminal && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	}
	if file != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    Rotation.MaxSize,
			MaxBackups: Rotation.MaxBackups,
			MaxAge:     Rotation.MaxAge,
		})
	}
	out.writer = io.MultiWriter(writers...)

	return &Logger{
		out:   out,
		Name:  name,
		Level: level,
	}
}

// SetOutput redirects this logger and every logger sharing its output.
// Colors are disabled since w is not known to be a terminal.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	l.out.writer = w
	l.out.color = false
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.Level {
		return
	}

	now := time.Now()
	text := fmt.Sprintf(msg, args...)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	uptime := now.Sub(l.out.started).Seconds()

	switch {
	case l.JSON:
		line, _ := json.Marshal(logEntry{
			Timestamp: now.Format(time.RFC3339),
			Uptime:    uptime,
			Level:     level.String(),
			Priority:  level.Priority(),
			Service:   l.Name,
			Message:   text,
		})
		fmt.Fprintf(l.out.writer, "%s\n", line)
	case l.out.color:
		fmt.Fprintf(l.out.writer, "%s[%10.3f] %-5s [%s] %s\033[0m\n", level.color(), uptime, level, l.Name, text)
	default:
		fmt.Fprintf(l.out.writer, "[%10.3f] %-5s [%s] %s\n", uptime, level, l.Name, text)
	}

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a logger for a component, e.g. "rtvfs/lfs".
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		out:   l.out,
		Name:  l.Name + "/" + name,
		Level: l.Level,
		JSON:  l.JSON,
	}
}

// Bytes formats a size for log lines, e.g. "64 KiB".
func Bytes(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%d B", n)
	}
	return humanize.IBytes(uint64(n))
}
