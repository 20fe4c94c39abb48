//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "bizdash/custom"

	"bizdash/config"
	"bizdash/core/app"
)

func main() {
	config.LoadEnv()

	a, err := app.New(config.LoadAppConfig())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = a.Run(ctx)
	stop()
	if cerr := a.Close(); cerr != nil {
		a.Logger.Warn("shutdown cleanup failed", "error", cerr)
	}
	if err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
