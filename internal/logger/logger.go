package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

type levelStyle struct {
	name     string
	level    *color.Color
	category *color.Color
}

var levelStyles = map[LogLevel]levelStyle{
	DEBUG: {"DEBUG", color.New(color.FgCyan), color.New(color.FgCyan, color.Bold)},
	INFO:  {"INFO", color.New(color.FgGreen), color.New(color.FgGreen, color.Bold)},
	WARN:  {"WARN", color.New(color.FgYellow), color.New(color.FgYellow, color.Bold)},
	ERROR: {"ERROR", color.New(color.FgRed), color.New(color.FgRed, color.Bold)},
	FATAL: {"FATAL", color.New(color.FgRed, color.Bold), color.New(color.FgRed, color.Bold)},
}

var (
	timeColor = color.New(color.FgBlue)
	fileColor = color.New(color.FgMagenta)
)

func (l LogLevel) String() string {
	if s, ok := levelStyles[l]; ok {
		return s.name
	}
	return "INFO"
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return WARN
	}
	for level, s := range levelStyles {
		if s.name == name {
			return level
		}
	}
	return INFO
}

// LogEntry is one line of the JSON log file.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	file     *os.File
	fileEnc  *json.Encoder
	colored  bool
	minLevel LogLevel
}

// NewLogger writes coloured lines to stdout and JSON lines to a daily file
// under dir.
func NewLogger(dir string) *Logger {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatal("Failed to create logs directory:", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("bus-fleet-%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Failed to create log file:", err)
	}

	l := &Logger{
		out:      os.Stdout,
		file:     file,
		fileEnc:  json.NewEncoder(file),
		colored:  true,
		minLevel: DEBUG,
	}
	l.Info("LOGGER", fmt.Sprintf("Logging to %s", path))
	return l
}

// NewConsoleLogger writes plain lines to w and keeps no log file.
func NewConsoleLogger(w io.Writer) *Logger {
	return &Logger{out: w, minLevel: DEBUG}
}

// SetLevel drops entries below level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// log must be called directly by the exported methods so the caller depth
// points at their caller.
func (l *Logger) log(level LogLevel, category, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		entry.File, entry.Line = filepath.Base(file), line
	}

	fmt.Fprintln(l.out, l.render(level, entry))
	if l.fileEnc != nil {
		_ = l.fileEnc.Encode(entry)
	}
}

func (l *Logger) render(level LogLevel, entry LogEntry) string {
	clock := entry.Timestamp[11:19]
	levelName := fmt.Sprintf("%-5s", entry.Level)
	category := fmt.Sprintf("[%-10s]", entry.Category)
	var where string
	if entry.File != "" {
		where = fmt.Sprintf(" (%s:%d)", entry.File, entry.Line)
	}

	if l.colored {
		style := levelStyles[level]
		clock = timeColor.Sprint(clock)
		levelName = style.level.Sprint(levelName)
		category = style.category.Sprint(category)
		if where != "" {
			where = fileColor.Sprint(where)
		}
	}
	return fmt.Sprintf("%s %s %s %s%s", clock, levelName, category, entry.Message, where)
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	os.Exit(1)
}

// LogBooking records a ledger action on one seat of a schedule.
func (l *Logger) LogBooking(action, scheduleID string, seat int, message string) {
	l.log(INFO, "BOOKING", fmt.Sprintf("[%s] %s#%d - %s", action, scheduleID, seat, message))
}

// LogFleet records a registry action on a bus or schedule.
func (l *Logger) LogFleet(action, id, message string) {
	l.log(INFO, "FLEET", fmt.Sprintf("[%s] %s - %s", action, id, message))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.log(INFO, "API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.log(INFO, "KAFKA", fmt.Sprintf("[%s] %s - %s", action, topic, message))
}

func (l *Logger) LogDatabase(operation, table, message string) {
	l.log(INFO, "DATABASE", fmt.Sprintf("[%s] %s - %s", operation, table, message))
}

func (l *Logger) Close() {
	if l.file == nil {
		return
	}
	l.Info("LOGGER", "Closing log file")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.file.Close()
	l.file, l.fileEnc = nil, nil
}
