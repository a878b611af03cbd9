package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/connectk/internal/board"
)

func TestChooseMoveBlocksOpenThree(t *testing.T) {
	// o threatens to complete the bottom row at column 5
	b := board.MustParse("7x6:4:g 7/7/7/7/2x4/1xooo1x")
	t.Log(b)
	eng := NewEngine(16)

	move := eng.ChooseMove(context.Background(), b, board.One, SearchLimits{
		MoveTime: time.Second,
		Depth:    4,
	})
	assert.Equal(t, board.NewMove(5, 0), move)
}

func TestChooseMoveTakesWin(t *testing.T) {
	b := board.MustParse("7x6:4:g 7/7/7/7/ooo4/xxx4")
	eng := NewEngine(0)

	move := eng.ChooseMove(context.Background(), b, board.One, SearchLimits{MoveTime: time.Second})
	assert.Equal(t, board.NewMove(3, 0), move)
}

func TestChooseMoveOneByOne(t *testing.T) {
	eng := NewEngine(0)

	// Gravity boards are always searched
	move := eng.ChooseMoveMillis(board.MustGrid(1, 1, 1, true), board.One, 1000)
	assert.Equal(t, board.NewMove(0, 0), move)

	move = eng.ChooseMoveMillis(board.MustGrid(1, 1, 1, false), board.One, 1000)
	assert.Equal(t, board.NewMove(0, 0), move)
}

func TestChooseMoveEmptyBoardCenter(t *testing.T) {
	eng := NewEngine(0)
	assert.Equal(t, board.NewMove(1, 1), eng.ChooseMoveMillis(board.MustGrid(3, 3, 3, false), board.One, 1000))
	assert.Equal(t, board.NewMove(7, 7), eng.ChooseMoveMillis(board.MustGrid(15, 15, 5, false), board.Two, 1000))
}

func TestChooseMoveDeadline(t *testing.T) {
	b := board.MustParse("15x15:5:n 15/15/15/15/15/15/6o8/6xx7/5ox8/15/15/15/15/15/15")
	eng := NewEngine(16)

	const moveTime = 300 * time.Millisecond
	start := time.Now()
	move := eng.ChooseMove(context.Background(), b, board.Two, SearchLimits{MoveTime: moveTime})
	elapsed := time.Since(start)

	t.Logf("move %s in %v", move, elapsed)
	require.False(t, move.IsNone())
	assert.Equal(t, board.Empty, b.At(move.X, move.Y))
	assert.LessOrEqual(t, elapsed, moveTime+DefaultSafetyMargin)
}

func TestChooseMoveCancelledContext(t *testing.T) {
	b := board.MustParse("7x7:4:n 7/7/7/3x3/7/7/7")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	move := NewEngine(0).ChooseMove(ctx, b, board.Two, SearchLimits{})
	require.False(t, move.IsNone())
	assert.Equal(t, board.Empty, b.At(move.X, move.Y))
}

func TestChooseMoveReportsIterations(t *testing.T) {
	b := board.MustParse("7x6:4:g 7/7/7/7/7/3x3")
	eng := NewEngine(1)

	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		assert.NotEqual(t, CancelValue, info.Score)
		assert.Positive(t, info.Nodes)
	}
	eng.ChooseMove(context.Background(), b, board.Two, SearchLimits{Depth: 3})
	assert.Equal(t, []int{1, 2, 3}, depths)
}

func TestCacheDoesNotChangeChoice(t *testing.T) {
	b := board.MustParse("9x9:4:n 9/9/9/3o5/3xx4/4o4/9/9/9")
	limits := SearchLimits{Depth: 3}

	plain := NewEngine(0).ChooseMove(context.Background(), b, board.One, limits)
	cached := NewEngine(4)
	first := cached.ChooseMove(context.Background(), b, board.One, limits)
	second := cached.ChooseMove(context.Background(), b, board.One, limits)

	assert.Equal(t, plain, first)
	assert.Equal(t, first, second)
	assert.Positive(t, cached.CacheHitRate())
}

func TestNonLosingFallback(t *testing.T) {
	a := board.NewMove(0, 0)
	b := board.NewMove(1, 0)
	c := board.NewMove(2, 0)

	done := []Action{{Score: 5, Move: a}, {Score: 3, Move: b}, {Score: LoseValue, Move: c}}
	assert.Equal(t, b, nonLosing(done))

	done = []Action{{Score: LoseValue, Move: a}, {Score: LoseValue, Move: c}}
	assert.Equal(t, c, nonLosing(done))
}

func TestRootMaxCancelled(t *testing.T) {
	b := board.MustParse("7x6:4:g 7/7/7/7/7/3x3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSearcher(board.Two, NewTimeManager(ctx, 0, 0), nil)
	a := s.rootMax(b, 2)
	assert.Equal(t, CancelValue, a.Score)
	assert.True(t, a.Move.IsNone())
}

// cancelOnPlace cancels the search once the root has placed after pieces.
type cancelOnPlace struct {
	board.State
	after  int
	placed int
	cancel context.CancelFunc
}

func (c *cancelOnPlace) Place(m board.Move, s board.Side) board.State {
	c.placed++
	if c.placed > c.after {
		c.cancel()
	}
	return c.State.Place(m, s)
}

func TestRootMaxKeepsProvenWin(t *testing.T) {
	// column 3 makes an open three on the bottom row
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := &cancelOnPlace{State: board.MustParse("7x6:4:g 7/7/7/7/7/1xx4"), after: 1, cancel: cancel}

	s := newSearcher(board.One, NewTimeManager(ctx, 0, 0), nil)
	a := s.rootMax(root, 3)
	assert.Equal(t, WinValue, a.Score)
	assert.Equal(t, 3, a.Move.X)
	assert.Equal(t, 1, root.placed)
}

func TestScoreToString(t *testing.T) {
	assert.Equal(t, "win", ScoreToString(WinValue))
	assert.Equal(t, "loss", ScoreToString(LoseValue))
	assert.Equal(t, "-42", ScoreToString(-42))
	assert.Equal(t, "0", ScoreToString(0))
}
