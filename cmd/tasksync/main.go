// Package main is the entry point for the tasksync CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tasksync/internal/backend/googletasks"
	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/service"
)

func main() {
	// Cancel on interrupt so an in-flight sync stops between remote calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
		return googletasks.New(ctx, cfg, googletasks.OptionsFromSettings(cfg.Settings.Sync, logger))
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
