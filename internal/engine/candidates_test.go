package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/connectk/internal/board"
)

func TestGravityCandidates(t *testing.T) {
	b := board.MustParse("7x6:4:g 7/7/7/7/7/3x3")
	moves := Candidates(b, board.Two, true)

	var cols []int
	for _, m := range moves {
		cols = append(cols, m.X)
		assert.Equal(t, 5, m.Y)
	}
	assert.Equal(t, []int{3, 2, 4, 1, 5, 0, 6}, cols)
	assert.Equal(t, moves, Candidates(b, board.Two, false))

	assert.Equal(t, []int{2, 1, 3, 0}, columns(columnOrder(4, 4)))
	assert.Equal(t, []int{0}, columns(columnOrder(1, 1)))
}

func columns(moves []board.Move) []int {
	out := make([]int, len(moves))
	for i, m := range moves {
		out[i] = m.X
	}
	return out
}

func TestCandidatesAreEmptyAndOrdered(t *testing.T) {
	b := board.MustParse("9x9:4:n 9/9/9/3o5/3xx4/4o4/9/9/9")
	moves := Candidates(b, board.One, true)
	require.NotEmpty(t, moves)

	cx, cy := b.Width()/2, b.Height()/2
	prev := -1
	for _, m := range moves {
		assert.Equal(t, board.Empty, b.At(m.X, m.Y), "candidate %s is occupied", m)
		d := dist2(m, cx, cy)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestCandidatesFallback(t *testing.T) {
	// 2,0 touches a piece but every window through it is dead
	b := board.MustParse("3x1:3:n xo1")
	assert.Equal(t, []board.Move{{X: 2, Y: 0}}, Candidates(b, board.One, true))

	// Only 2,0 passes the primary test; the fallback is not consulted
	b = board.MustParse("5x1:3:n xo3")
	assert.Equal(t, []board.Move{{X: 2, Y: 0}}, Candidates(b, board.One, false))
}

func TestCandidatesIncludeJunctions(t *testing.T) {
	// 3,3 is a junction for x but touches no piece
	b := board.MustParse("7x7:4:n 7/7/7/xx5/7/3x3/3x3")
	t.Log(b)
	moves := Candidates(b, board.Two, false)
	assert.Contains(t, moves, board.NewMove(3, 3))
}
