package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/legions/internal/platform/timeouts"
	gamegrpc "github.com/louisbranch/legions/internal/services/game/api/grpc/game"
	"github.com/louisbranch/legions/internal/services/game/api/grpc/interceptors"
	grpcmeta "github.com/louisbranch/legions/internal/services/game/api/grpc/metadata"
	"github.com/louisbranch/legions/internal/services/game/api/ws"
	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/rules"
	"github.com/louisbranch/legions/internal/services/game/lobby"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
	storagesqlite "github.com/louisbranch/legions/internal/services/game/storage/sqlite"
)

// Config describes one game process.
type Config struct {
	// Addr is the gRPC listen address.
	Addr string
	// HTTPAddr is the websocket stream listen address. Empty disables it.
	HTTPAddr string
	// DBPath is the action-log database. storagesqlite.MemoryPath keeps
	// games in memory only.
	DBPath string
	// RulesDir overrides the embedded rule tables when set.
	RulesDir string
	Lobby    lobby.Config
	// Keyring signs the action log. Nil leaves it unsigned.
	Keyring *integrity.Keyring
	// Roller overrides the seeded dice, mainly for tests.
	Roller dice.Roller
	Log    zerolog.Logger
}

// Server hosts the game service.
type Server struct {
	log          zerolog.Logger
	store        *storagesqlite.Store
	lobby        *lobby.Lobby
	listener     net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	httpListener net.Listener
	httpServer   *http.Server
}

// New opens storage and binds the listeners described by cfg.
func New(cfg Config) (*Server, error) {
	tables, err := loadTables(cfg.RulesDir)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	gameOpts := []game.Option{game.WithTables(tables), game.WithLogger(cfg.Log)}
	if cfg.Roller != nil {
		gameOpts = append(gameOpts, game.WithRoller(cfg.Roller))
	}
	lb := lobby.New(store, cfg.Lobby,
		lobby.WithLogger(cfg.Log.With().Str("component", "lobby").Logger()),
		lobby.WithGameOptions(gameOpts...),
	)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcmeta.UnaryServerInterceptor(nil),
			interceptors.AccessLogInterceptor(cfg.Log),
			interceptors.DomainErrorInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpcmeta.StreamServerInterceptor(nil),
			interceptors.StreamAccessLogInterceptor(cfg.Log),
			interceptors.StreamDomainErrorInterceptor(),
		),
	)
	gamegrpc.RegisterGameServiceServer(grpcServer, gamegrpc.NewServer(lb, cfg.Log))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// Not serving until the lobby has restored its games.
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(gamegrpc.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	s := &Server{
		log:        cfg.Log,
		store:      store,
		lobby:      lb,
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}

	if cfg.HTTPAddr != "" {
		httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			_ = listener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
		}
		s.httpListener = httpListener
		s.httpServer = &http.Server{
			Handler:           ws.NewHandler(lb, cfg.Log.With().Str("component", "ws").Logger()).Router(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return s, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the websocket listener address, or "" when disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Lobby returns the lobby the server exposes.
func (s *Server) Lobby() *lobby.Lobby { return s.lobby }

// Run creates and serves a game server until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the lobby and both listeners, and blocks until ctx ends or one
// of them fails.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.log.Error().Err(err).Msg("close action store")
		}
	}()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.lobby.Run(gctx) })

	select {
	case <-s.lobby.Ready():
	case <-gctx.Done():
		_ = s.listener.Close()
		if s.httpListener != nil {
			_ = s.httpListener.Close()
		}
		if err := group.Wait(); err != nil {
			return fmt.Errorf("run lobby: %w", err)
		}
		return nil
	}

	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(gamegrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.log.Info().Str("addr", s.Addr()).Str("http_addr", s.HTTPAddr()).Msg("game server listening")

	group.Go(func() error {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	if s.httpServer != nil {
		group.Go(func() error {
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve HTTP: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})
	return group.Wait()
}

func (s *Server) shutdown() {
	s.health.Shutdown()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Warn().Err(err).Msg("shutdown HTTP server")
			_ = s.httpServer.Close()
		}
		cancel()
	}

	// Open action streams never end on their own; cut them off after the
	// grace period.
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeouts.Shutdown):
		s.log.Warn().Msg("gRPC graceful stop timed out")
		s.grpcServer.Stop()
	}
}

func loadTables(dir string) (*rules.Tables, error) {
	if strings.TrimSpace(dir) == "" {
		return rules.Default()
	}
	tables, err := rules.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load rules from %s: %w", dir, err)
	}
	return tables, nil
}

func openStore(cfg Config) (*storagesqlite.Store, error) {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		path = filepath.Join("data", "legions.db")
	}
	if path != storagesqlite.MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
	}
	opts := []storagesqlite.Option{storagesqlite.WithLogger(cfg.Log)}
	if cfg.Keyring != nil {
		opts = append(opts, storagesqlite.WithKeyring(cfg.Keyring))
	}
	store, err := storagesqlite.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}
