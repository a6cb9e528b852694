// Package follow mirrors a game running on a game server and prints its
// actions as they arrive, over gRPC or the websocket action stream.
package follow

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/louisbranch/legions/internal/platform/config"
	platformgrpc "github.com/louisbranch/legions/internal/platform/grpc"
	"github.com/louisbranch/legions/internal/platform/logging"
	gamegrpc "github.com/louisbranch/legions/internal/services/game/api/grpc/game"
	"github.com/louisbranch/legions/internal/services/game/api/ws"
	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/observer"
)

// Transports a follower can use.
const (
	TransportGRPC      = "grpc"
	TransportWebsocket = "ws"
)

// Config holds follow command configuration.
type Config struct {
	Addr        string        `env:"LEGIONS_GAME_SERVER_ADDR" envDefault:"localhost:8082"`
	StreamURL   string        `env:"LEGIONS_GAME_STREAM_URL" envDefault:"http://localhost:8083"`
	DialTimeout time.Duration `env:"LEGIONS_FOLLOW_DIAL_TIMEOUT" envDefault:"10s"`
	Transport   string
	Game        string
	Player      string
	For         time.Duration
	Snapshot    bool
	Log         logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Transport, "transport", TransportGRPC, "grpc or ws")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server gRPC address")
	fs.StringVar(&cfg.StreamURL, "url", cfg.StreamURL, "game server action stream base URL")
	fs.StringVar(&cfg.Game, "game", "", "game to follow")
	fs.StringVar(&cfg.Player, "player", "", "follow as this player (default: spectator)")
	fs.DurationVar(&cfg.For, "for", 0, "stop after this long (0 = until the stream ends)")
	fs.BoolVar(&cfg.Snapshot, "snapshot", false, "print the mirrored state as JSON when done")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "how long to wait for a healthy server")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run follows cfg.Game until the server ends the stream, cfg.For passes or
// ctx is canceled, writing each applied action to out as an encoded line.
// The last sequence applied is returned.
func Run(ctx context.Context, cfg Config, out io.Writer, log zerolog.Logger) (uint64, error) {
	if cfg.Game == "" {
		return 0, errors.New("-game is required")
	}
	if out == nil {
		out = io.Discard
	}
	if cfg.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.For)
		defer cancel()
	}

	mirror, err := game.New(cfg.Game, game.WithLogger(log))
	if err != nil {
		return 0, err
	}
	var writeErr error
	mirror.Subscribe("", observer.Func(func(e observer.Envelope) {
		line, err := action.Encode(e.Action)
		if err == nil {
			_, err = fmt.Fprintln(out, line)
		}
		if err != nil && writeErr == nil {
			writeErr = err
		}
	}))

	var last uint64
	switch cfg.Transport {
	case TransportGRPC, "":
		last, err = followGRPC(ctx, cfg, mirror, log)
	case TransportWebsocket:
		last, err = followWebsocket(ctx, cfg, mirror)
	default:
		return 0, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	if err != nil && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return last, err
	}
	if writeErr != nil {
		return last, fmt.Errorf("write action: %w", writeErr)
	}
	log.Info().Str("game", cfg.Game).Uint64("last_seq", last).Msg("stopped following")

	if cfg.Snapshot {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(mirror.Snapshot()); err != nil {
			return last, fmt.Errorf("write snapshot: %w", err)
		}
	}
	return last, nil
}

func followGRPC(ctx context.Context, cfg Config, mirror *game.Game, log zerolog.Logger) (uint64, error) {
	conn, err := platformgrpc.DialWithHealth(ctx, nil, cfg.Addr, cfg.DialTimeout, log, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	follower := gamegrpc.NewFollower(gamegrpc.NewClient(conn), mirror, cfg.Player, log)
	err = follower.Run(ctx)
	return follower.LastSeq(), err
}

func followWebsocket(ctx context.Context, cfg Config, mirror *game.Game) (uint64, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	conn, resp, err := ws.Dial(dialCtx, cfg.StreamURL, cfg.Game, cfg.Player, 0)
	if err != nil {
		if resp != nil {
			return 0, fmt.Errorf("open action stream: %s: %w", resp.Status, err)
		}
		return 0, fmt.Errorf("open action stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	return ws.Follow(conn, mirror)
}
