// Command maintenance verifies, replays and exports stored game logs
// without starting the game server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/tools/maintenance"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := maintenance.ParseConfig(flag.CommandLine, os.Args[1:])
	if err == nil {
		err = maintenance.Run(ctx, cfg, os.Stdout, os.Stderr)
	}
	if err != nil {
		stop()
		config.Exitf("maintenance: %v", err)
	}
}
