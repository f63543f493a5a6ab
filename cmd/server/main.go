package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/invtracker/internal/server"
	"github.com/iudanet/invtracker/internal/server/config"
	"github.com/iudanet/invtracker/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "invtracker-server: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invtracker-server: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := newLogger(cfg)

	if cfg.GeneratedSecret {
		logger.Warn("no JWT secret configured, using a random one: tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	srv := server.New(cfg, store, logger, Version)
	defer srv.Close()

	logger.Info("invtracker server starting",
		slog.String("version", Version),
		slog.String("addr", cfg.ListenAddr),
		slog.String("db", cfg.DBPath),
		slog.Bool("dev", cfg.Dev))

	return srv.Run(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	// Уровень уже проверен в config.Validate
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func printVersion() {
	fmt.Printf("invtracker server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
