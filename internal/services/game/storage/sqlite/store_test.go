package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/louisbranch/legions/internal/services/game/storage"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clock := &stepClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	store, err := Open(filepath.Join(t.TempDir(), "legions.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func testKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	ring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v1")
	require.NoError(t, err)
	return ring
}

func appendLines(t *testing.T, store *Store, game string, n int) []storage.ActionRecord {
	t.Helper()
	var out []storage.ActionRecord
	for i := range n {
		rec, err := store.AppendAction(context.Background(), game, fmt.Sprintf(`JoinGame {"game":%q,"player":"p%d"}`, game, i))
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestOpenValidation(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)

	var nilStore *Store
	require.NoError(t, nilStore.Close())
}

func TestOpenInMemory(t *testing.T) {
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	appendLines(t, store, "g1", 2)
	seq, err := store.LatestSeq(context.Background(), "g1")
	require.NoError(t, err)
	require.EqualValues(t, 2, seq)
}

func TestAppendActionAssignsSequencePerGame(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seq, err := store.LatestSeq(ctx, "g1")
	require.NoError(t, err)
	require.Zero(t, seq)

	g1 := appendLines(t, store, "g1", 3)
	g2 := appendLines(t, store, "g2", 1)

	require.EqualValues(t, 1, g1[0].Seq)
	require.EqualValues(t, 3, g1[2].Seq)
	require.EqualValues(t, 1, g2[0].Seq)
	require.Empty(t, g1[0].PrevHash)
	require.Equal(t, g1[0].ChainHash, g1[1].PrevHash)
	require.Equal(t, g1[1].ChainHash, g1[2].PrevHash)
	require.Empty(t, g1[0].Signature)

	seq, err = store.LatestSeq(ctx, "g1")
	require.NoError(t, err)
	require.EqualValues(t, 3, seq)
}

func TestAppendActionValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.AppendAction(ctx, "", "line")
	require.Error(t, err)
	_, err = store.AppendAction(ctx, "g1", " ")
	require.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.AppendAction(canceled, "g1", "line")
	require.ErrorIs(t, err, context.Canceled)
}

func TestListActionsPages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	written := appendLines(t, store, "g1", 5)

	page, err := store.ListActions(ctx, "g1", 0, 2)
	require.NoError(t, err)
	require.Equal(t, written[:2], page)

	page, err = store.ListActions(ctx, "g1", 2, 10)
	require.NoError(t, err)
	require.Equal(t, written[2:], page)

	page, err = store.ListActions(ctx, "g1", 5, 10)
	require.NoError(t, err)
	require.Empty(t, page)

	_, err = store.ListActions(ctx, "g1", 0, 0)
	require.Error(t, err)
}

func TestVerifyChain(t *testing.T) {
	store := openTestStore(t, WithKeyring(testKeyring(t)))
	ctx := context.Background()
	recs := appendLines(t, store, "g1", 4)
	require.Equal(t, "v1", recs[0].SignatureKeyID)
	require.NotEmpty(t, recs[0].Signature)

	require.NoError(t, store.VerifyChain(ctx, "g1"))
	require.NoError(t, store.VerifyChain(ctx, "empty"))

	_, err := store.sqlDB.ExecContext(ctx, `UPDATE actions SET line = 'tampered' WHERE game = 'g1' AND seq = 3`)
	require.NoError(t, err)
	err = store.VerifyChain(ctx, "g1")
	require.ErrorIs(t, err, storage.ErrCorruptLog)
	require.Contains(t, err.Error(), "seq=3")
}

func TestVerifyChainDetectsGapsAndForeignSignatures(t *testing.T) {
	store := openTestStore(t, WithKeyring(testKeyring(t)))
	ctx := context.Background()
	appendLines(t, store, "g1", 3)

	_, err := store.sqlDB.ExecContext(ctx, `DELETE FROM actions WHERE game = 'g1' AND seq = 2`)
	require.NoError(t, err)
	require.ErrorIs(t, store.VerifyChain(ctx, "g1"), storage.ErrCorruptLog)

	appendLines(t, store, "g2", 2)
	other, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("another")}, "v1")
	require.NoError(t, err)
	store.keyring = other
	require.ErrorIs(t, store.VerifyChain(ctx, "g2"), storage.ErrCorruptLog)
}

func TestGameRegistry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.GetGame(ctx, "g1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	deadline := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutGame(ctx, storage.GameRecord{Name: "g1", Owner: "alice", Players: 1, StartBy: deadline}))
	rec, err := store.GetGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, storage.GameOpen, rec.Status)
	require.Equal(t, "alice", rec.Owner)
	require.Equal(t, deadline, rec.StartBy)
	created := rec.CreatedAt

	rec.Status = storage.GameRunning
	rec.Players = 2
	rec.StartBy = time.Time{}
	rec.CreatedAt = time.Time{}
	require.NoError(t, store.PutGame(ctx, rec))
	rec, err = store.GetGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, storage.GameRunning, rec.Status)
	require.Equal(t, 2, rec.Players)
	require.True(t, rec.StartBy.IsZero())
	require.Equal(t, created, rec.CreatedAt)
	require.True(t, rec.UpdatedAt.After(created))

	appendLines(t, store, "g1", 2)
	require.NoError(t, store.DeleteGame(ctx, "g1"))
	_, err = store.GetGame(ctx, "g1")
	require.ErrorIs(t, err, storage.ErrNotFound)
	seq, err := store.LatestSeq(ctx, "g1")
	require.NoError(t, err)
	require.Zero(t, seq)
	require.ErrorIs(t, store.DeleteGame(ctx, "g1"), storage.ErrNotFound)
}

func TestListGamesPaging(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"delta", "alpha", "charlie", "bravo"} {
		require.NoError(t, store.PutGame(ctx, storage.GameRecord{Name: name}))
	}
	require.NoError(t, store.PutGame(ctx, storage.GameRecord{Name: "echo", Status: storage.GameRunning}))

	collect := func(req storage.ListGamesRequest) []string {
		var names []string
		for {
			res, err := store.ListGames(ctx, req)
			require.NoError(t, err)
			for _, g := range res.Games {
				names = append(names, g.Name)
			}
			if res.NextPageToken == "" {
				return names
			}
			req.PageToken = res.NextPageToken
		}
	}

	require.Equal(t, []string{"delta", "alpha", "charlie", "bravo", "echo"},
		collect(storage.ListGamesRequest{PageSize: 2}))
	require.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo"},
		collect(storage.ListGamesRequest{PageSize: 2, OrderBy: "name"}))
	require.Equal(t, []string{"alpha", "bravo", "charlie", "delta"},
		collect(storage.ListGamesRequest{PageSize: 3, OrderBy: "name", Status: storage.GameOpen}))

	first, err := store.ListGames(ctx, storage.ListGamesRequest{PageSize: 1, OrderBy: "name"})
	require.NoError(t, err)
	_, err = store.ListGames(ctx, storage.ListGamesRequest{PageSize: 1, OrderBy: "created_at", PageToken: first.NextPageToken})
	require.Error(t, err, "token from another order")

	_, err = store.ListGames(ctx, storage.ListGamesRequest{PageSize: 1, OrderBy: "players"})
	require.Error(t, err)
	_, err = store.ListGames(ctx, storage.ListGamesRequest{})
	require.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, err = store.LatestSeq(context.Background(), "g1")
	require.Error(t, err)
	require.False(t, errors.Is(err, storage.ErrNotFound))
}

func TestRestrictedActionsKeepRecipients(t *testing.T) {
	store := openTestStore(t, WithKeyring(testKeyring(t)))
	ctx := context.Background()

	rec, err := store.AppendAction(ctx, "g1", `RevealLegion {"game":"g1","player":"alice"}`, "bob", "carol")
	require.NoError(t, err)
	require.Equal(t, []string{"bob", "carol"}, rec.Recipients)

	recs, err := store.ListActions(ctx, "g1", 0, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"bob", "carol"}, recs[0].Recipients)
	require.NoError(t, store.VerifyChain(ctx, "g1"))

	_, err = store.sqlDB.ExecContext(ctx, `UPDATE actions SET recipients = '' WHERE game = 'g1'`)
	require.NoError(t, err)
	require.ErrorIs(t, store.VerifyChain(ctx, "g1"), storage.ErrCorruptLog)
}
