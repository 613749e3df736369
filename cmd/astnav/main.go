// Package main is the entry point for the astnav CLI.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/yaklabco/astnav/internal/cli"
	"github.com/yaklabco/astnav/internal/logging"
)

// Set with -ldflags -X by the stave build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	err := root.ExecuteContext(ctx)
	// Failed navigation commands have already been reported with their outcomes.
	if err != nil && !errors.Is(err, cli.ErrCommandFailed) {
		logging.Default().Error("astnav failed", logging.FieldError, err)
	}
	return cli.ExitCodeFromError(err)
}
