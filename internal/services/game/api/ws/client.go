package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/legions/internal/services/game/domain/action"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/storage"
)

// FormatMessage renders an action record as a stream message.
func FormatMessage(rec storage.ActionRecord) string {
	return strconv.FormatUint(rec.Seq, 10) + " " + rec.Line
}

// ParseMessage splits a stream message into its sequence and encoded action.
func ParseMessage(msg string) (uint64, string, error) {
	head, line, ok := strings.Cut(msg, " ")
	if !ok || line == "" {
		return 0, "", fmt.Errorf("malformed stream message %q", msg)
	}
	seq, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed stream sequence %q: %w", head, err)
	}
	return seq, line, nil
}

// ActionsURL builds the stream URL of a game on a server at base, which may
// use an http, https, ws or wss scheme.
func ActionsURL(base, name, player string, after uint64) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/games/" + url.PathEscape(name) + "/actions"
	q := url.Values{}
	if player != "" {
		q.Set("player", player)
	}
	if after > 0 {
		q.Set("after", strconv.FormatUint(after, 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the action stream of a game. The HTTP response is returned on
// handshake failures so callers can inspect the status.
func Dial(ctx context.Context, base, name, player string, after uint64) (*websocket.Conn, *http.Response, error) {
	target, err := ActionsURL(base, name, player, after)
	if err != nil {
		return nil, nil, err
	}
	return websocket.DefaultDialer.DialContext(ctx, target, nil)
}

// Follow applies stream messages to mirror until the server closes the
// connection. It returns the last applied sequence; a normal close returns a
// nil error.
func Follow(conn *websocket.Conn, mirror *game.Game) (uint64, error) {
	if mirror.IsMaster() {
		return 0, errors.New("follow needs a mirror game")
	}
	var last uint64
	for {
		_, data, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return last, nil
		}
		if err != nil {
			return last, err
		}
		seq, line, err := ParseMessage(string(data))
		if err != nil {
			return last, err
		}
		a, err := action.Decode(line)
		if err != nil {
			return last, fmt.Errorf("decode action %d: %w", seq, err)
		}
		if err := mirror.Apply(a); err != nil {
			return last, fmt.Errorf("apply action %d: %w", seq, err)
		}
		last = seq
	}
}
