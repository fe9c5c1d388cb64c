// Package logging wraps logrus with a module-scoped entry shared by the
// console, the store and the web front end.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	mu     sync.RWMutex
	logger = logrus.NewEntry(logrus.New())
)

// Fields is an alias-compatible set of structured log fields.
type Fields logrus.Fields

// Init configures the shared logger for module at level (debug, info, warn,
// error; anything else means info). Output goes to stderr so it never mixes
// with console output.
func Init(module, level string) {
	InitWithOutput(module, level, os.Stderr)
}

// InitWithOutput is Init with an explicit destination.
func InitWithOutput(module, level string, out io.Writer) {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: timeFormat,
		FullTimestamp:   true,
	})
	base.SetOutput(out)
	base.SetLevel(parseLevel(level))

	entry := base.WithFields(logrus.Fields{"module": module})
	mu.Lock()
	logger = entry
	mu.Unlock()
	entry.WithFields(logrus.Fields{"event": "init_logger"}).Debug("logger initiated")
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func current() *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithFields returns an entry carrying fields plus the module field.
func WithFields(fields Fields) *logrus.Entry {
	return current().WithFields(logrus.Fields(fields))
}

// Error logs at error level.
func Error(args ...interface{}) {
	current().Error(args...)
}

// Info logs at info level.
func Info(args ...interface{}) {
	current().Info(args...)
}

// Debug logs at debug level.
func Debug(args ...interface{}) {
	current().Debug(args...)
}
