// Package game parses game command configuration and starts the server.
package game

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/legions/internal/platform/cmd"
	"github.com/louisbranch/legions/internal/platform/logging"
	server "github.com/louisbranch/legions/internal/services/game/app"
	"github.com/louisbranch/legions/internal/services/game/lobby"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
)

// Config holds game command configuration.
type Config struct {
	Port          int           `env:"LEGIONS_GAME_PORT" envDefault:"8082"`
	Addr          string        `env:"LEGIONS_GAME_ADDR"`
	HTTPAddr      string        `env:"LEGIONS_GAME_HTTP_ADDR" envDefault:":8083"`
	DBPath        string        `env:"LEGIONS_GAME_DB_PATH" envDefault:"data/legions.db"`
	RulesDir      string        `env:"LEGIONS_GAME_RULES_DIR"`
	StartDeadline time.Duration `env:"LEGIONS_GAME_START_DEADLINE" envDefault:"24h"`
	MinPlayers    int           `env:"LEGIONS_GAME_MIN_PLAYERS"`
	MaxPlayers    int           `env:"LEGIONS_GAME_MAX_PLAYERS"`
	Log           logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The action stream listen address (empty disables it)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The action log database path")
	fs.StringVar(&cfg.RulesDir, "rules", cfg.RulesDir, "A directory of rule tables replacing the embedded ones")
	fs.DurationVar(&cfg.StartDeadline, "start-deadline", cfg.StartDeadline, "How long an open game may wait to start (0 disables)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "The log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr returns the gRPC listen address.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the game server.
func Run(ctx context.Context, cfg Config) error {
	logger := logging.MustStderr(entrypoint.ServiceGame, cfg.Log)
	keyring, err := integrity.KeyringFromEnv()
	if errors.Is(err, integrity.ErrKeyNotConfigured) {
		logger.Info().Msg("action log signing disabled")
		keyring, err = nil, nil
	}
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:     cfg.ListenAddr(),
			HTTPAddr: cfg.HTTPAddr,
			DBPath:   cfg.DBPath,
			RulesDir: cfg.RulesDir,
			Lobby: lobby.Config{
				StartDeadline: cfg.StartDeadline,
				MinPlayers:    cfg.MinPlayers,
				MaxPlayers:    cfg.MaxPlayers,
			},
			Keyring: keyring,
			Log:     logger,
		})
	}, entrypoint.WithRunLogger(logger))
}
