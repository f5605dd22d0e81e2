package utils

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type cronLogger struct {
	log zerolog.Logger
}

// CronLogger adapts a zerolog logger to cron.Logger.
func CronLogger(log zerolog.Logger) cron.Logger {
	return cronLogger{log: log}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NewScheduler returns a cron scheduler running in loc. Panicking jobs are
// recovered and a job still running when its next tick fires is skipped.
func NewScheduler(loc *time.Location, log zerolog.Logger) *cron.Cron {
	logger := CronLogger(log)
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}
