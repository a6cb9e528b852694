package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/dice"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/lobby"
	"github.com/louisbranch/legions/internal/services/game/storage"
	"github.com/louisbranch/legions/internal/services/game/storage/sqlite"
)

func newServer(t *testing.T) (*lobby.Lobby, *httptest.Server) {
	t.Helper()
	store, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	lb := lobby.New(store, lobby.Config{}, lobby.WithGameOptions(game.WithRoller(&dice.Fixed{Results: []int{2}})))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lb.Run(ctx) }()
	<-lb.Ready()

	srv := httptest.NewServer(NewHandler(lb, zerolog.Nop(), WithPingPeriod(50*time.Millisecond)).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		require.NoError(t, <-done)
	})
	return lb, srv
}

func startGame(t *testing.T, lb *lobby.Lobby, name string) {
	t.Helper()
	ctx := context.Background()
	_, err := lb.Create(ctx, name, "alice")
	require.NoError(t, err)
	require.NoError(t, lb.Join(ctx, name, "bob"))
	require.NoError(t, lb.Start(ctx, name, "alice"))
}

func TestParseMessage(t *testing.T) {
	line := FormatMessage(storage.ActionRecord{Seq: 42, Line: `JoinGame {"player":"bob"}`})
	require.Equal(t, `42 JoinGame {"player":"bob"}`, line)

	seq, rest, err := ParseMessage(line)
	require.NoError(t, err)
	require.Equal(t, uint64(42), seq)
	require.Equal(t, `JoinGame {"player":"bob"}`, rest)

	for _, bad := range []string{"", "42", "42 ", "x JoinGame {}"} {
		_, _, err := ParseMessage(bad)
		require.Error(t, err, bad)
	}
}

func TestActionsURL(t *testing.T) {
	got, err := ActionsURL("http://localhost:8080/", "my game", "bob", 3)
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/games/my%20game/actions?after=3&player=bob", got)

	got, err = ActionsURL("https://example.com", "g1", "", 0)
	require.NoError(t, err)
	require.Equal(t, "wss://example.com/games/g1/actions", got)

	_, err = ActionsURL("ftp://example.com", "g1", "", 0)
	require.Error(t, err)
}

func TestHandshakeErrors(t *testing.T) {
	_, srv := newServer(t)
	ctx := context.Background()

	_, resp, err := Dial(ctx, srv.URL, "nope", "", 0)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/games/nope/actions?after=minus")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStreamCatchesUpThenFollows(t *testing.T) {
	lb, srv := newServer(t)
	ctx := context.Background()
	startGame(t, lb, "g1")

	conn, _, err := Dial(ctx, srv.URL, "g1", "alice", 3)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	for want := uint64(4); want <= 5; want++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		seq, _, err := ParseMessage(string(data))
		require.NoError(t, err)
		require.Equal(t, want, seq)
	}

	var picker string
	require.NoError(t, lb.Do(ctx, "g1", func(g *game.Game) error {
		picker = g.NextColorPicker()
		return g.PickColor(picker, g.ColorsLeft()[0])
	}))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	seq, _, err := ParseMessage(string(data))
	require.NoError(t, err)
	require.Equal(t, uint64(6), seq)
}

func TestFollowMirrorsGameUntilRemoved(t *testing.T) {
	lb, srv := newServer(t)
	ctx := context.Background()
	startGame(t, lb, "g1")

	conn, _, err := Dial(ctx, srv.URL, "g1", "", 0)
	require.NoError(t, err)
	defer conn.Close()

	mirror, err := game.New("g1")
	require.NoError(t, err)
	type result struct {
		last uint64
		err  error
	}
	done := make(chan result, 1)
	go func() {
		last, err := Follow(conn, mirror)
		done <- result{last, err}
	}()

	want, err := lb.Snapshot(ctx, "g1")
	require.NoError(t, err)
	seq, err := lb.LatestSeq(ctx, "g1")
	require.NoError(t, err)

	// Give the stream time to deliver the log before the game goes away.
	require.Eventually(t, func() bool {
		return lb.Hub().Len("g1") == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, lb.Remove(ctx, "g1"))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Equal(t, seq, res.last)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not end")
	}
	require.Equal(t, want, mirror.Snapshot())

	master, err := game.New("g2", game.Authoritative())
	require.NoError(t, err)
	_, err = Follow(conn, master)
	require.Error(t, err)
}

func TestCloseCodes(t *testing.T) {
	code, _ := closeCode(nil)
	require.Equal(t, websocket.CloseNormalClosure, code)
	code, _ = closeCode(lobby.ErrStreamClosed)
	require.Equal(t, websocket.CloseNormalClosure, code)
	code, _ = closeCode(lobby.ErrSlowSubscriber)
	require.Equal(t, websocket.CloseTryAgainLater, code)
	code, _ = closeCode(context.Canceled)
	require.Equal(t, websocket.CloseGoingAway, code)
	code, _ = closeCode(context.DeadlineExceeded)
	require.Equal(t, websocket.CloseInternalServerErr, code)
}
