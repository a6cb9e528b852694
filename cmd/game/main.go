// Command game serves Titan games over gRPC and mirrors their action logs
// to websocket clients.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	gamecmd "github.com/louisbranch/legions/internal/cmd/game"
	"github.com/louisbranch/legions/internal/platform/config"
)

func main() {
	cfg, err := gamecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("game: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = gamecmd.Run(ctx, cfg)
	stop()
	if err != nil {
		config.Exitf("game: %v", err)
	}
}
