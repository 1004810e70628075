// Command galaxy explores food pairings as a force-directed galaxy, in the
// terminal, in a desktop window, or as exported images.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		bad.Fprintf(os.Stderr, "galaxy: %v\n", err)
		os.Exit(1)
	}
}
