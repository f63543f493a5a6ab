package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/iudanet/invtracker/internal/client/cli"
	"github.com/iudanet/invtracker/internal/client/config"
	"github.com/iudanet/invtracker/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flags := config.RegisterFlags(flag.CommandLine)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	cli.Register(commander, &cli.Runtime{
		IO:     iocli.NewStdio(),
		Flags:  flags,
		Getenv: os.Getenv,
		Stderr: os.Stderr,
	})

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// Ctrl+C прерывает summary -watch и сетевые запросы
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func printVersion() {
	fmt.Printf("invtracker\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
