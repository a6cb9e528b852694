// Command hmac-key prints a new action log signing key, or with -id a
// rotated key list that keeps the current keys.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/tools/hmackey"
)

func main() {
	cfg, err := hmackey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("hmac-key: %v", err)
	}
	if err := hmackey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("hmac-key: %v", err)
	}
}
