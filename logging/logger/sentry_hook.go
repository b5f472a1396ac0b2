package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards error-level entries to sentry. The sentry client must
// be initialized beforehand (observes.NewSentry).
type SentryHook struct {
	levels  []logrus.Level
	timeout time.Duration
}

// NewSentryHook creates a hook for error, fatal and panic entries.
func NewSentryHook() *SentryHook {
	return &SentryHook{
		levels:  []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
		timeout: 2 * time.Second,
	}
}

func (h *SentryHook) Levels() []logrus.Level { return h.levels }

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	hub := sentry.CurrentHub()
	if entry.Context != nil {
		if ctxHub := sentry.GetHubFromContext(entry.Context); ctxHub != nil {
			hub = ctxHub
		}
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range entry.Data {
			if s, ok := v.(string); ok {
				scope.SetTag(k, s)
				continue
			}
			scope.SetExtra(k, v)
		}
		scope.SetLevel(sentryLevel(entry.Level))
		hub.CaptureMessage(entry.Message)
	})

	if entry.Level <= logrus.FatalLevel {
		hub.Flush(h.timeout)
	}
	return nil
}

func sentryLevel(l logrus.Level) sentry.Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	case logrus.WarnLevel:
		return sentry.LevelWarning
	case logrus.InfoLevel:
		return sentry.LevelInfo
	}
	return sentry.LevelDebug
}
