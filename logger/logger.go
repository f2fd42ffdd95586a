package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	levelColors = map[LogLevel]string{
		DEBUG: "\033[36m", // Cyan
		INFO:  "\033[32m", // Green
		WARN:  "\033[33m", // Yellow
		ERROR: "\033[31m", // Red
		FATAL: "\033[35m", // Magenta
	}

	resetColor = "\033[0m"
)

// ParseLevel maps a level name to its LogLevel. Unknown names fall back to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// Logger is a simple leveled logger that writes to the console and an
// optional daily log file.
type Logger struct {
	level    LogLevel
	mu       sync.Mutex
	useColor bool
	prefix   string
	file     *os.File
	fileDay  string
	logDir   string
	maxAge   int
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Config describes how the logger should be initialised.
type Config struct {
	Level    LogLevel
	LogDir   string
	MaxAge   int // days of log files to retain
	UseColor bool
	Prefix   string
}

// Initialize boots the global logger instance if it has not been created yet.
func Initialize(config Config) error {
	var err error
	once.Do(func() {
		defaultLogger = &Logger{
			level:    config.Level,
			useColor: config.UseColor,
			prefix:   config.Prefix,
			logDir:   config.LogDir,
			maxAge:   config.MaxAge,
		}

		if config.LogDir != "" {
			if err = os.MkdirAll(config.LogDir, 0755); err != nil {
				return
			}
			err = defaultLogger.rotate()
		}
	})

	return err
}

// rotate opens the log file for the current day and prunes stale files.
// Called under the logger mutex (or before any concurrent use).
func (l *Logger) rotate() error {
	day := time.Now().Format("2006-01-02")
	if l.file != nil && l.fileDay == day {
		return nil
	}

	if l.file != nil {
		l.file.Close()
	}

	logPath := filepath.Join(l.logDir, fmt.Sprintf("server-%s.log", day))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.fileDay = day

	if l.maxAge > 0 {
		files, _ := filepath.Glob(filepath.Join(l.logDir, "server-*.log"))
		for _, f := range files {
			info, statErr := os.Stat(f)
			if statErr != nil {
				continue
			}
			if time.Since(info.ModTime()) > time.Duration(l.maxAge)*24*time.Hour {
				os.Remove(f)
			}
		}
	}

	return nil
}

// log writes the formatted entry to all destinations.
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	levelName := levelNames[level]
	message := fmt.Sprintf(format, args...)

	plain := fmt.Sprintf("%s [%s]%s %s\n", timestamp, levelName, l.prefix, message)

	if l.useColor {
		color := levelColors[level]
		fmt.Fprintf(os.Stdout, "%s [%s]%s %s%s%s\n",
			timestamp, levelName, l.prefix, color, message, resetColor)
	} else {
		io.WriteString(os.Stdout, plain)
	}

	if l.logDir != "" {
		if err := l.rotate(); err == nil && l.file != nil {
			io.WriteString(l.file, plain)
		}
	}

	if level == FATAL {
		os.Exit(1)
	}
}

// Public helper methods for the default logger.
func Debug(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(DEBUG, format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(INFO, format, args...)
	} else {
		log.Printf("[INFO] "+format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(WARN, format, args...)
	} else {
		log.Printf("[WARN] "+format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(ERROR, format, args...)
	} else {
		log.Printf("[ERROR] "+format, args...)
	}
}

func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(FATAL, format, args...)
	} else {
		log.Fatalf("[FATAL] "+format, args...)
	}
}

// WithFields attaches structured fields to the log entry.
func WithFields(fields map[string]interface{}) *LogEntry {
	return &LogEntry{
		fields: fields,
		logger: defaultLogger,
	}
}

// LogEntry represents a structured log entry builder.
type LogEntry struct {
	fields map[string]interface{}
	logger *Logger
}

func (e *LogEntry) Debug(format string, args ...interface{}) {
	e.log(DEBUG, format, args...)
}

func (e *LogEntry) Info(format string, args ...interface{}) {
	e.log(INFO, format, args...)
}

func (e *LogEntry) Warn(format string, args ...interface{}) {
	e.log(WARN, format, args...)
}

func (e *LogEntry) Error(format string, args ...interface{}) {
	e.log(ERROR, format, args...)
}

func (e *LogEntry) Fatal(format string, args ...interface{}) {
	e.log(FATAL, format, args...)
}

func (e *LogEntry) log(level LogLevel, format string, args ...interface{}) {
	if e.logger == nil || level < e.logger.level {
		return
	}

	message := fmt.Sprintf(format, args...)

	// Render fields sorted so log lines are stable and greppable.
	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fieldStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, e.fields[k]))
		}
		message = fmt.Sprintf("%s | %s", message, strings.Join(fieldStrs, ", "))
	}

	e.logger.log(level, "%s", message)
}

// Log allows emitting a message with an explicit level via the entry.
func (e *LogEntry) Log(level LogLevel, format string, args ...interface{}) {
	e.log(level, format, args...)
}

// SetLevel updates the global logging level.
func SetLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.level = level
		defaultLogger.mu.Unlock()
	}
}

// GetLevel returns the current global logging level.
func GetLevel() LogLevel {
	if defaultLogger != nil {
		return defaultLogger.level
	}
	return INFO
}
