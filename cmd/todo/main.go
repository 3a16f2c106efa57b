// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"todo/internal/backend/googletasks"
	"todo/internal/backend/rest"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/ui"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	if ui.IsTTY(os.Stdout) {
		dispatcher.SetDefaultCommand("tui")
	}

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService builds the backend selected in cfg.
func newService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendREST:
		client, err := rest.NewFromConfig(ctx, cfg, rest.Options{Logger: logger})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendGoogleTasks:
		client, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}
