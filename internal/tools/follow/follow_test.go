package follow

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	platformgrpc "github.com/louisbranch/legions/internal/platform/grpc"
	gamegrpc "github.com/louisbranch/legions/internal/services/game/api/grpc/game"
	server "github.com/louisbranch/legions/internal/services/game/app"
	"github.com/louisbranch/legions/internal/services/game/dice"
	storagesqlite "github.com/louisbranch/legions/internal/services/game/storage/sqlite"
)

// startGame serves a game server with a started two player game named g1.
func startGame(t *testing.T) *server.Server {
	t.Helper()
	s, err := server.New(server.Config{
		Addr:     "127.0.0.1:0",
		HTTPAddr: "127.0.0.1:0",
		DBPath:   storagesqlite.MemoryPath,
		Roller:   &dice.Fixed{Results: []int{4}},
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	conn, err := platformgrpc.DialWithHealth(ctx, nil, s.Addr(), 5*time.Second, zerolog.Nop(), platformgrpc.DefaultClientDialOptions()...)
	require.NoError(t, err)
	defer conn.Close()
	client := gamegrpc.NewClient(conn)
	_, err = client.CreateGame(ctx, "g1", "alice")
	require.NoError(t, err)
	_, err = client.JoinGame(ctx, "g1", "bob")
	require.NoError(t, err)
	_, err = client.StartGame(ctx, "g1", "alice")
	require.NoError(t, err)
	return s
}

func TestRunFollowsGame(t *testing.T) {
	s := startGame(t)

	for _, transport := range []string{TransportGRPC, TransportWebsocket} {
		t.Run(transport, func(t *testing.T) {
			cfg := Config{
				Addr:        s.Addr(),
				StreamURL:   "http://" + s.HTTPAddr(),
				DialTimeout: 5 * time.Second,
				Transport:   transport,
				Game:        "g1",
				For:         time.Second,
				Snapshot:    true,
			}
			var out bytes.Buffer
			last, err := Run(context.Background(), cfg, &out, zerolog.Nop())
			require.NoError(t, err)
			require.NotZero(t, last)

			lines := strings.Split(out.String(), "\n")
			require.True(t, strings.HasPrefix(lines[0], "JoinGame "), lines[0])
			require.Contains(t, out.String(), "AssignedAllTowers ")
			require.Contains(t, out.String(), `"g1"`)
		})
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{}, nil, zerolog.Nop())
	require.ErrorContains(t, err, "-game")

	_, err = Run(context.Background(), Config{Game: "g1", Transport: "carrier-pigeon"}, nil, zerolog.Nop())
	require.ErrorContains(t, err, "unknown transport")
}

func TestParseConfig(t *testing.T) {
	t.Setenv("LEGIONS_GAME_SERVER_ADDR", "game:9000")

	fs := flag.NewFlagSet("follow", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-game", "g1", "-transport", "ws", "-for", "30s"})
	require.NoError(t, err)
	require.Equal(t, "game:9000", cfg.Addr)
	require.Equal(t, "http://localhost:8083", cfg.StreamURL)
	require.Equal(t, TransportWebsocket, cfg.Transport)
	require.Equal(t, "g1", cfg.Game)
	require.Equal(t, 30*time.Second, cfg.For)
	require.Equal(t, 10*time.Second, cfg.DialTimeout)
}
