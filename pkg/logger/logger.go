package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	return [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}[l]
}

// Logger is a structured logger
type Logger struct {
	level      LogLevel
	writer     io.Writer
	structured bool // JSON output if true
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(INFO, os.Stdout, false)
}

// NewLogger creates a new logger instance
func NewLogger(level LogLevel, writer io.Writer, structured bool) *Logger {
	return &Logger{
		level:      level,
		writer:     writer,
		structured: structured,
	}
}

// SetDefault sets the default logger
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Log logs a message with the given level and fields
func (l *Logger) Log(level LogLevel, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	l.emit(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	})
}

// LogError logs a message with an attached error
func (l *Logger) LogError(level LogLevel, message string, err error, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	l.emit(entry)
}

func (l *Logger) emit(entry LogEntry) {
	if l.structured {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.writer, string(data))
		return
	}

	msg := fmt.Sprintf("[%s] %s: %s", entry.Timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		msg += fmt.Sprintf(" %+v", entry.Fields)
	}

	if entry.Error != "" {
		msg += fmt.Sprintf(" error=%s", entry.Error)
	}

	fmt.Fprintln(l.writer, msg)
}

// Convenience methods for default logger

func Debug(message string, fields map[string]interface{}) {
	defaultLogger.Log(DEBUG, message, fields)
}

func Info(message string, fields map[string]interface{}) {
	defaultLogger.Log(INFO, message, fields)
}

func Warn(message string, fields map[string]interface{}) {
	defaultLogger.Log(WARN, message, fields)
}

func Error(message string, err error, fields map[string]interface{}) {
	defaultLogger.LogError(ERROR, message, err, fields)
}

func Fatal(message string, err error, fields map[string]interface{}) {
	defaultLogger.LogError(FATAL, message, err, fields)
	os.Exit(1)
}
