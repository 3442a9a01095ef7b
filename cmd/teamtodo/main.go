// Package main is the entry point for the teamtodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"teamtodo/internal/backend/googletasks"
	"teamtodo/internal/backend/supabase"
	"teamtodo/internal/cli"
	"teamtodo/internal/commands"
	"teamtodo/internal/config"
	"teamtodo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService builds the backend selected in config.
func newService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if cfg.Backend == config.BackendGoogleTasks {
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := supabase.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
