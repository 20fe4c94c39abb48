package cron

import (
	"context"
	"time"

	"bizdash/config"
	"bizdash/core/module"
)

const (
	JobCacheSweep = "cache:sweep"
	JobLogsPrune  = "logs:prune"
)

func init() {
	Register(JobCacheSweep, config.CronSchedules[JobCacheSweep], sweepCache)
	Register(JobLogsPrune, config.CronSchedules[JobLogsPrune], pruneLogs)
}

// sweepCache drops expired cache entries that were never read again.
func sweepCache(_ context.Context, deps *module.Deps, _ ...string) error {
	n := deps.Cache.Cleanup()
	deps.Logger.Info("cache swept", "job", JobCacheSweep, "removed", n, "remaining", deps.Cache.Len())
	return nil
}

func pruneLogs(_ context.Context, deps *module.Deps, _ ...string) error {
	if deps.Config.LogDir == "" {
		return nil
	}
	n, err := config.PruneLogs(deps.Config.LogDir, config.LogRetentionDays*24*time.Hour)
	if err != nil {
		return err
	}
	deps.Logger.Info("logs pruned", "job", JobLogsPrune, "removed", n)
	return nil
}
