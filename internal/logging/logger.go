// Package logging provides structured logging for ptpfs, built on
// github.com/sirupsen/logrus.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the available log levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config holds logging configuration.
type Config struct {
	Level  LogLevel
	Format string // "text" (default) or "json"
	Output io.Writer

	// Sync has no effect on logrus's writer-based logging, which is
	// already synchronous to Output.
	Sync bool
	// NoColor disables ANSI color codes in the text formatter, useful
	// when Output is a file or a test buffer.
	NoColor bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// Logger wraps a logrus.Entry, accumulating structured fields through
// the With* methods.
type Logger struct {
	entry *logrus.Entry
}

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// NewLogger creates a new logger from config. A nil config uses
// DefaultConfig.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(config.Level.logrusLevel())
	if config.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: config.NoColor, FullTimestamp: true})
	}

	return &Logger{entry: logrus.NewEntry(l)}
}

// Default returns the default logger, creating it if necessary.
func Default() *Logger {
	defaultMu.RLock()
	if defaultLogger != nil {
		defer defaultMu.RUnlock()
		return defaultLogger
	}
	defaultMu.RUnlock()

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

func (l *Logger) Debug(msg string, kv ...any) { l.entry.WithFields(fields(kv)).Debug(msg) }
func (l *Logger) Info(msg string, kv ...any)  { l.entry.WithFields(fields(kv)).Info(msg) }
func (l *Logger) Warn(msg string, kv ...any)  { l.entry.WithFields(fields(kv)).Warn(msg) }
func (l *Logger) Error(msg string, kv ...any) { l.entry.WithFields(fields(kv)).Error(msg) }

// Printf-style logging, kept for callers (e.g. ptpsession.Logger) that
// want format-string logging rather than structured fields.
func (l *Logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// Printf satisfies ptpsession.Logger alongside Debugf.
func (l *Logger) Printf(format string, args ...any) { l.entry.Infof(format, args...) }

// WithSession returns a Logger that annotates every entry with
// session_id.
func (l *Logger) WithSession(sessionID uint32) *Logger {
	return &Logger{entry: l.entry.WithField("session_id", sessionID)}
}

// WithTransaction returns a Logger that annotates every entry with
// transaction_id.
func (l *Logger) WithTransaction(txID uint32) *Logger {
	return &Logger{entry: l.entry.WithField("transaction_id", txID)}
}

// WithOperation returns a Logger that annotates every entry with the
// PTP operation name in flight.
func (l *Logger) WithOperation(op string) *Logger {
	return &Logger{entry: l.entry.WithField("operation", op)}
}

// WithError returns a Logger that annotates every entry with err.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Global convenience functions delegating to Default().
func Debug(msg string, kv ...any) { Default().Debug(msg, kv...) }
func Info(msg string, kv ...any)  { Default().Info(msg, kv...) }
func Warn(msg string, kv ...any)  { Default().Warn(msg, kv...) }
func Error(msg string, kv ...any) { Default().Error(msg, kv...) }
