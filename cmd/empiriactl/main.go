package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/empiria/internal/cli"
	"github.com/okian/empiria/internal/config"
	"github.com/okian/empiria/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Same config as the server so both default to the same database.
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app := &cli.App{DBPath: cfg.DBPath}
	defer func() { _ = app.Close() }()
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
