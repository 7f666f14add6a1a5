// Package logger is the structured logger shared by the API server and the CLI.
// A *Logger travels in the request context so every line carries the
// request_id/user_id/meme_id fields that were attached along the way.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger wraps logrus.Entry.
type Logger struct {
	*logrus.Entry
}

// Config controls level, format and destination.
// Output wins over everything else. Otherwise lines go to stdout and, outside
// the local environment, to a rotated File as well.
type Config struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	Output      io.Writer // explicit destination
	ServiceName string

	Environment string // local, dev, prod
	File        *FileConfig
}

// FileConfig describes lumberjack rotation.
type FileConfig struct {
	Path       string
	Only       bool // skip stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	rotated   io.Closer
	rotatedMu sync.Mutex
)

// New builds a Logger. A nil cfg logs JSON at info level to stdout.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: "info", Format: "json", ServiceName: "memerator"}
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportCaller(true)
	log.SetFormatter(newFormatter(cfg.Format))
	log.SetOutput(outputFor(cfg))

	return &Logger{Entry: log.WithField("service", cfg.ServiceName)}
}

// NewDefault builds a Logger from LOG_* environment variables.
func NewDefault() *Logger {
	return New(ConfigFromEnv())
}

func outputFor(cfg *Config) io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	file := cfg.File
	if cfg.Environment == "local" || file == nil || file.Path == "" {
		return os.Stdout
	}

	w := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   file.Compress,
	}
	rotatedMu.Lock()
	rotated = w
	rotatedMu.Unlock()

	if file.Only {
		return w
	}
	return io.MultiWriter(os.Stdout, w)
}

// Sync closes the rotated log file, if any. Call it before exit.
func Sync() error {
	rotatedMu.Lock()
	defer rotatedMu.Unlock()

	if rotated == nil {
		return nil
	}
	err := rotated.Close()
	rotated = nil
	return err
}

// WithFields returns a derived Logger.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

// WithField returns a derived Logger.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithError returns a derived Logger carrying err.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "text") {
		return &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  timestampFormat,
			CallerPrettyfier: shortCaller,
		}
	}
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
		CallerPrettyfier: shortCaller,
	}
}

// shortCaller reports "pkg.Func" and "file.go:42".
func shortCaller(frame *runtime.Frame) (string, string) {
	fn := frame.Function
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}
	return fn, filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
}
