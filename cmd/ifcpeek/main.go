// Package main is the ifcpeek entry point.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ifcpeek/ifcpeek/internal/cli"
	"github.com/ifcpeek/ifcpeek/internal/peekerr"
)

// Build metadata, injected via -ldflags.
var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = date

	// Ctrl-C inside the interactive shell never raises SIGINT (the line
	// editor reads the raw byte); this covers piped sessions and long
	// model loads.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps an execution error onto the process exit code: 2 for
// configuration problems, 3 for a missing model file, 4 for an
// unparseable model, 130 after an interrupt and 1 for anything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch peekerr.KindOf(err) {
	case peekerr.KindConfiguration:
		return 2
	case peekerr.KindFileNotFound:
		return 3
	case peekerr.KindInvalidModel:
		return 4
	}
	return 1
}
