package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

var (
	log  *Logger
	once sync.Once
)

// Fields is an alias so call sites need not import logrus.
type Fields = logrus.Fields

// Logger is the process-wide logger shared by every package.
type Logger struct {
	*logrus.Logger
}

// Entry is a log entry with fields attached. Chained With* calls keep
// returning *Entry, so call sites never handle logrus types directly.
type Entry struct {
	*logrus.Entry
}

func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{l.Logger.WithField(key, value)}
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{l.Logger.WithFields(fields)}
}

func (l *Logger) WithError(err error) *Entry {
	return &Entry{l.Logger.WithError(err)}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return &Entry{e.Entry.WithField(key, value)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{e.Entry.WithFields(fields)}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{e.Entry.WithError(err)}
}

// Enabled reports whether log output goes anywhere.
func (l *Logger) Enabled() bool {
	return l.Out != io.Discard
}

// InitializeLogger sets up the shared logger. Logging is off unless
// SECURECHAT_DEBUG names a level.
func InitializeLogger() {
	once.Do(func() {
		log = &Logger{}
		log.Logger = logrus.New()
		// We do not want to log by default
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)
		if logLevel := os.Getenv("SECURECHAT_DEBUG"); logLevel != "" {
			log.SetOutput(os.Stderr)
			log.SetLevel(parseLevel(logLevel))
			log.WithField("level", log.GetLevel()).Debug("Logging enabled.")
		}
	})
}

// Configure applies a level and destination from configuration. An empty
// level leaves the environment-driven setting alone.
func Configure(level string, out io.Writer) error {
	l := GetLogger()
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return oops.In("logger").Wrapf(err, "invalid log level %q", level)
	}
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.WithField("level", lvl).Debug("Logging configured.")
	return nil
}

// GetLogger returns the initialized Logger.
func GetLogger() *Logger {
	if log == nil {
		InitializeLogger()
	}
	return log
}

func parseLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.DebugLevel
	}
}

func init() {
	InitializeLogger()
}
