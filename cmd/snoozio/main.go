// Package main provides the snoozio CLI and daemon entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/snoozio/snoozio/internal/app"
)

// main cancels the runner on SIGINT/SIGTERM so a serving daemon stops the
// alarm and removes its socket before exiting.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
