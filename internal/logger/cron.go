package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

type cronLogger struct {
	log *slog.Logger
}

// CronLogger routes cron engine messages into slog. Info messages are
// demoted to debug since the engine logs every wake-up.
func CronLogger(log *slog.Logger) cron.Logger {
	if log == nil {
		log = slog.Default()
	}
	return cronLogger{log: log.With("component", "cron")}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
