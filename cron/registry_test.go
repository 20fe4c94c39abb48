package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bizdash/config"
	"bizdash/core/cache"
	"bizdash/core/module"
)

func testDeps(t *testing.T) *module.Deps {
	return &module.Deps{
		Config: &config.Config{LogDir: t.TempDir()},
		Cache:  cache.NewCache(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRegistry_Register_Jobs(t *testing.T) {
	ran := false
	Register("testregistryjob", "@every 1h", func(ctx context.Context, deps *module.Deps, args ...string) error {
		ran = true
		return nil
	})
	defer Unregister("testregistryjob")

	j, ok := Jobs()["testregistryjob"]
	if !ok {
		t.Fatal("testregistryjob not in Jobs()")
	}
	if j.Schedule != "@every 1h" {
		t.Errorf("Schedule = %q, want @every 1h", j.Schedule)
	}
	if err := j.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Error("Run did not execute")
	}
}

func TestRegistry_Register_DuplicatePanics(t *testing.T) {
	noop := func(context.Context, *module.Deps, ...string) error { return nil }
	Register("dupjob", "@hourly", noop)
	defer Unregister("dupjob")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate")
		}
	}()
	Register("dupjob", "@daily", noop)
}

func TestBuiltinJobsRegistered(t *testing.T) {
	jobs := Jobs()
	for _, name := range []string{JobCacheSweep, JobLogsPrune} {
		j, ok := jobs[name]
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if j.Schedule != config.CronSchedules[name] {
			t.Errorf("%s schedule = %q, want %q", name, j.Schedule, config.CronSchedules[name])
		}
	}
}

func TestRunJob_CacheSweep(t *testing.T) {
	deps := testDeps(t)
	deps.Cache.Set("short", 1, time.Millisecond)
	deps.Cache.Set("long", 2, time.Hour)
	time.Sleep(5 * time.Millisecond)

	if err := RunJob(context.Background(), deps, JobCacheSweep); err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if deps.Cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", deps.Cache.Len())
	}
}

func TestRunJob_LogsPrune(t *testing.T) {
	deps := testDeps(t)
	dir := deps.Config.LogDir
	old := filepath.Join(dir, "2020-01-01.log")
	fresh := filepath.Join(dir, "today.log")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-(config.LogRetentionDays + 1) * 24 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	if err := RunJob(context.Background(), deps, JobLogsPrune); err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if _, err := os.Stat(old); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old log should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh log should stay: %v", err)
	}
}

func TestRunJob_Unknown(t *testing.T) {
	if err := RunJob(context.Background(), testDeps(t), "nope"); err == nil {
		t.Error("want error for unknown job")
	}
}
