// Command follow mirrors a running game and prints its actions.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/platform/logging"
	"github.com/louisbranch/legions/internal/tools/follow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := follow.ParseConfig(flag.CommandLine, os.Args[1:])
	if err == nil {
		_, err = follow.Run(ctx, cfg, os.Stdout, logging.MustStderr("follow", cfg.Log))
	}
	if err != nil {
		stop()
		config.Exitf("follow: %v", err)
	}
}
