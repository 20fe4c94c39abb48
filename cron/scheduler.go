package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"bizdash/core/module"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 5 * time.Minute

// StartCron schedules every registered job and starts the scheduler.
func StartCron(deps *module.Deps) (*cron.Cron, error) {
	lg := cronLogger{deps.Logger}
	c := cron.New(cron.WithLogger(lg), cron.WithChain(cron.Recover(lg), cron.SkipIfStillRunning(lg)))
	for name, j := range Jobs() {
		name, run := name, j.Run
		_, err := c.AddFunc(j.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			start := time.Now()
			if err := run(ctx, deps); err != nil {
				deps.Logger.Error("cron job failed", "job", name, "error", err)
				return
			}
			deps.Logger.Debug("cron job done", "job", name, "duration_ms", time.Since(start).Milliseconds())
		})
		if err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
	}
	c.Start()
	return c, nil
}

// RunJob runs one job by name immediately.
func RunJob(ctx context.Context, deps *module.Deps, name string, args ...string) error {
	j, ok := Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	return j.Run(ctx, deps, args...)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
