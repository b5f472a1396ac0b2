package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ncobase/feedsync/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// Key constants
const (
	VersionKey = "version"
	ErrorKey   = "error"
)

// Logger wraps logrus with context-first, key/value logging.
type Logger struct {
	*logrus.Logger
	version  string
	mu       sync.Mutex
	logFile  *os.File
	logPath  string
	stopRoll chan struct{}
}

var (
	stdLogger *Logger
	once      sync.Once
)

// StdLogger returns the singleton logger instance
func StdLogger() *Logger {
	once.Do(func() {
		stdLogger = NewLogger()
	})
	return stdLogger
}

// NewLogger returns a logger writing text to stderr at info level.
func NewLogger() *Logger {
	l := &Logger{Logger: logrus.New()}
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// New initializes the standard logger with cfg and returns its cleanup.
func New(cfg *config.Config) (func(), error) {
	return StdLogger().Init(cfg)
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *config.Config) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	l.Reconfigure(c)

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		if c.OutputFile == "" {
			return nil, fmt.Errorf("logger output is file but output_file is empty")
		}
		l.logPath = c.OutputFile
		if err := l.setupLogFile(); err != nil {
			return nil, err
		}
		l.stopRoll = make(chan struct{})
		go l.periodicLogRotation(l.stopRoll)
	default:
		l.SetOutput(os.Stderr)
	}

	l.ReplaceHooks(make(logrus.LevelHooks))
	l.AddHook(&desensitizeHook{d: NewDesensitizer(c.Desensitization)})
	if c.SentryDSN != "" {
		l.AddHook(NewSentryHook())
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.stopRoll != nil {
			close(l.stopRoll)
			l.stopRoll = nil
		}
		if l.logFile != nil {
			_ = l.logFile.Close()
			l.logFile = nil
		}
	}, nil
}

// Reconfigure applies the level and format of c. Outputs and hooks are
// left as Init set them.
func (l *Logger) Reconfigure(c *config.Config) {
	if c == nil {
		return
	}
	l.SetLevel(logrus.Level(c.Level))
	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	l.logFile = f
	l.SetOutput(l.logFile)
	return nil
}

func (l *Logger) periodicLogRotation(stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := l.rotateLog(); err != nil {
				l.Logger.Errorf("Error rotating log: %v", err)
			}
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if ctx != nil {
		if traceID := getTraceID(ctx); traceID != "" {
			fields[traceKey] = traceID
		}
		if uid := getUserID(ctx); uid != "" {
			fields[userKey] = uid
		}
	}
	if l.version != "" {
		fields[VersionKey] = l.version
	}

	entry := l.WithFields(fields)
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	return entry
}

// kvFields turns alternating key/value pairs into fields. A trailing key
// without a value is kept under "!BADKEY", as slog does.
func kvFields(kv []any) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			fields["!BADKEY"] = key
			break
		}
		if err, isErr := kv[i+1].(error); isErr && err != nil {
			fields[key] = err.Error()
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, kv ...any) {
	if !l.IsLevelEnabled(level) {
		return
	}
	l.entryFromContext(ctx).WithFields(kvFields(kv)).Log(level, msg)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Trace(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.TraceLevel, msg, kv...)
}
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.DebugLevel, msg, kv...)
}
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.InfoLevel, msg, kv...)
}
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.WarnLevel, msg, kv...)
}
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, kv...)
}
func (l *Logger) Fatal(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, logrus.FatalLevel, msg, kv...)
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}

// Package-level helpers on the standard logger.

func Debug(ctx context.Context, msg string, kv ...any) { StdLogger().Debug(ctx, msg, kv...) }
func Info(ctx context.Context, msg string, kv ...any)  { StdLogger().Info(ctx, msg, kv...) }
func Warn(ctx context.Context, msg string, kv ...any)  { StdLogger().Warn(ctx, msg, kv...) }
func Error(ctx context.Context, msg string, kv ...any) { StdLogger().Error(ctx, msg, kv...) }
func Fatal(ctx context.Context, msg string, kv ...any) { StdLogger().Fatal(ctx, msg, kv...) }

func Debugf(ctx context.Context, format string, args ...any) {
	StdLogger().Debugf(ctx, format, args...)
}
func Infof(ctx context.Context, format string, args ...any) {
	StdLogger().Infof(ctx, format, args...)
}
func Warnf(ctx context.Context, format string, args ...any) {
	StdLogger().Warnf(ctx, format, args...)
}
func Errorf(ctx context.Context, format string, args ...any) {
	StdLogger().Errorf(ctx, format, args...)
}
