// Package ws serves a game's action stream over websockets.
//
// GET /games/{game}/actions?player=NAME&after=SEQ upgrades the connection
// and sends one text message per action the player may see, formatted as
// "seq Kind {json}". Clients decode the tail with action.Decode and apply it
// to a local mirror game. The server closes the socket when the game is
// removed or the client falls too far behind.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
	"github.com/louisbranch/legions/internal/platform/timeouts"
	"github.com/louisbranch/legions/internal/services/game/lobby"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

const maxClientMessage = 512

// Lobby is the part of the lobby the stream handler needs.
type Lobby interface {
	Get(ctx context.Context, name string) (storage.GameRecord, error)
	Stream(ctx context.Context, name, player string, after uint64, send func(storage.ActionRecord) error) error
}

// Handler serves action streams.
type Handler struct {
	lobby      Lobby
	log        zerolog.Logger
	upgrader   websocket.Upgrader
	writeWait  time.Duration
	pingPeriod time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithPingPeriod overrides the keepalive interval.
func WithPingPeriod(d time.Duration) Option {
	return func(h *Handler) { h.pingPeriod = d }
}

// WithCheckOrigin sets the origin policy of the upgrader.
func WithCheckOrigin(check func(*http.Request) bool) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = check }
}

// NewHandler returns a stream handler over lb.
func NewHandler(lb Lobby, log zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		lobby:      lb,
		log:        log,
		writeWait:  timeouts.WebsocketWrite,
		pingPeriod: timeouts.WebsocketPing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts the stream routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/games/{game}/actions", h.serveActions).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return r
}

func (h *Handler) serveActions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["game"]
	query := r.URL.Query()
	player := query.Get("player")
	var after uint64
	if raw := query.Get("after"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "after must be a sequence number", http.StatusBadRequest)
			return
		}
		after = n
	}
	if _, err := h.lobby.Get(r.Context(), name); err != nil {
		if apperrors.GetCode(err) == apperrors.CodeGameNotFound {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("game", name).Msg("look up game")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		h.log.Warn().Err(err).Str("game", name).Msg("upgrade action stream")
		return
	}
	s := &session{conn: conn, writeWait: h.writeWait}
	log := h.log.With().Str("game", name).Str("player", player).Logger()
	log.Debug().Uint64("after", after).Msg("action stream opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readLoop(cancel, 2*h.pingPeriod)
	go s.pingLoop(ctx, h.pingPeriod)

	err = h.lobby.Stream(ctx, name, player, after, func(rec storage.ActionRecord) error {
		return s.write(websocket.TextMessage, []byte(FormatMessage(rec)))
	})
	code, reason := closeCode(err)
	if code != websocket.CloseNormalClosure && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("action stream ended")
	}
	_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	_ = conn.Close()
}

func closeCode(err error) (int, string) {
	switch {
	case err == nil, errors.Is(err, lobby.ErrStreamClosed):
		return websocket.CloseNormalClosure, "game closed"
	case errors.Is(err, lobby.ErrSlowSubscriber):
		return websocket.CloseTryAgainLater, "too far behind"
	case errors.Is(err, context.Canceled):
		return websocket.CloseGoingAway, ""
	default:
		return websocket.CloseInternalServerErr, "stream failed"
	}
}

// session serializes writes to one connection.
type session struct {
	conn      *websocket.Conn
	writeWait time.Duration
	mu        sync.Mutex
}

func (s *session) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// readLoop drains client frames so pongs and close frames are handled, and
// cancels the stream when the client goes away.
func (s *session) readLoop(cancel context.CancelFunc, pongWait time.Duration) {
	defer cancel()
	s.conn.SetReadLimit(maxClientMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *session) pingLoop(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
