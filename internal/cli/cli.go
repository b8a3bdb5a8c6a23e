// Package cli implements the journeyboard command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrUsage = errors.New("usage")

const usage = `usage: journeyboard <command> [flags]

commands:
  validate [-board path]                   load and check a board configuration
  replay [flags] script.json...            replay action scripts and print scores
  show [-store kind] [-db path] [-id id]   list stored snapshots or show one`

// Run dispatches args to a command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	switch args[0] {
	case "validate":
		return runValidate(args[1:], stdout, stderr)
	case "replay":
		return runReplay(ctx, args[1:], stdout, stderr)
	case "show":
		return runShow(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%w: %s\n%s", ErrUsage, msg, usage)
}
