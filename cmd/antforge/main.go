// Command antforge runs the decentralized multi-agent pheromone
// coordination engine from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/compozy/antforge/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.RootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
