// Package cmd holds the startup helpers shared by legions commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/platform/otel"
	"github.com/louisbranch/legions/internal/platform/timeouts"
)

// ServiceGame names the game server in telemetry and logs.
const ServiceGame = "game"

// ParseConfig fills cfg from the environment, with a .env file in the
// working directory supplying anything the environment lacks.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	return config.ParseEnv(cfg)
}

// ParseArgs lets flags override what ParseConfig loaded.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("nil flag set")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

type runSettings struct {
	flushTimeout time.Duration
	log          zerolog.Logger
}

// RunOption adjusts RunWithTelemetry.
type RunOption func(*runSettings)

// WithFlushTimeout bounds how long pending spans may take to flush on exit.
func WithFlushTimeout(d time.Duration) RunOption {
	return func(s *runSettings) {
		if d > 0 {
			s.flushTimeout = d
		}
	}
}

// WithRunLogger reports telemetry shutdown failures to log.
func WithRunLogger(log zerolog.Logger) RunOption {
	return func(s *runSettings) { s.log = log }
}

// RunWithTelemetry installs tracing for service, runs run and flushes spans
// once it returns. The error is run's.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error, opts ...RunOption) error {
	if strings.TrimSpace(service) == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("nothing to run")
	}
	settings := runSettings{flushTimeout: timeouts.Shutdown, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&settings)
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.flushTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			settings.log.Warn().Err(err).Str("service", service).Msg("telemetry shutdown")
		}
	}()
	return run(ctx)
}
