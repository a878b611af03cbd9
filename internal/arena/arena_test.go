package arena

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/engine"
	"github.com/hailam/connectk/internal/storage"
)

var connectFour = Config{Width: 7, Height: 6, K: 4, Gravity: true}

func randomFactory(name string, seed uint64) PlayerFactory {
	return func(game int) Player { return NewRandomPlayer(name, seed+uint64(game)) }
}

func TestRandomMatchIsRecorded(t *testing.T) {
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	cfg := connectFour
	cfg.Games = 6
	cfg.Parallel = 3
	ar := New(cfg, randomFactory("alice", 1), randomFactory("bob", 100), store)

	summary, err := ar.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Records, 6)

	for i, rec := range summary.Records {
		require.NotNil(t, rec)
		assert.True(t, rec.Result.Over())
		// Sides alternate every game
		if i%2 == 0 {
			assert.Equal(t, "alice", rec.PlayerOne)
		} else {
			assert.Equal(t, "alice", rec.PlayerTwo)
		}
	}

	alice, bob := summary.Scores["alice"], summary.Scores["bob"]
	require.NotNil(t, alice)
	require.NotNil(t, bob)
	assert.Equal(t, 6, alice.Wins+alice.Losses+alice.Draws)
	assert.Equal(t, alice.Wins, bob.Losses)
	assert.Equal(t, alice.Draws, bob.Draws)

	stats, err := store.LoadStats("alice")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.GamesPlayed)
	assert.Equal(t, alice.Wins, stats.Wins)

	games, err := store.Games(0)
	require.NoError(t, err)
	assert.Len(t, games, 6)
}

func TestEngineBeatsRandom(t *testing.T) {
	cfg := connectFour
	cfg.Games = 4
	cfg.Parallel = 2
	limits := engine.SearchLimits{Depth: 4}
	eng := func(int) Player { return NewEnginePlayer("engine", 1, limits) }

	summary, err := New(cfg, eng, randomFactory("random", 7), nil).Run(context.Background())
	require.NoError(t, err)

	score := summary.Scores["engine"]
	t.Logf("engine: %+v", *score)
	assert.GreaterOrEqual(t, score.Wins, 2)
}

type stubborn struct{}

func (stubborn) Name() string { return "stubborn" }
func (stubborn) Move(context.Context, *board.Grid, board.Side) board.Move {
	return board.NoMove
}

func TestForfeit(t *testing.T) {
	cfg := connectFour
	cfg.Games = 1
	ar := New(cfg, func(int) Player { return stubborn{} }, randomFactory("random", 1), nil)

	_, err := ar.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForfeit))
	assert.True(t, errors.Is(err, board.ErrIllegalMove))
}

func TestCancelledMatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := connectFour
	cfg.Games = 2
	_, err := New(cfg, randomFactory("a", 1), randomFactory("b", 2), nil).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParsePlayer(t *testing.T) {
	limits := engine.SearchLimits{Depth: 3}

	f, err := ParsePlayer("random", "r", 0, limits, 5)
	require.NoError(t, err)
	assert.IsType(t, &RandomPlayer{}, f(0))
	assert.Equal(t, "r", f(0).Name())

	f, err = ParsePlayer("engine:easy", "e", 0, limits, 0)
	require.NoError(t, err)
	p := f(0).(*EnginePlayer)
	assert.Equal(t, engine.DifficultySettings[engine.Easy], p.limits)

	for _, bad := range []string{"human", "engine:godlike", "random:hard"} {
		_, err := ParsePlayer(bad, "x", 0, limits, 0)
		assert.Error(t, err, bad)
	}
}

func TestRandomPlayerIsSeeded(t *testing.T) {
	g := board.MustGrid(7, 6, 4, true)
	a := NewRandomPlayer("a", 42)
	b := NewRandomPlayer("b", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Move(context.Background(), g, board.One), b.Move(context.Background(), g, board.One))
	}
}
