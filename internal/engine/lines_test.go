package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hailam/connectk/internal/board"
)

func TestJunctionByConstruction(t *testing.T) {
	// Two x pieces to the left of 3,3 and two below it
	b := board.MustParse("7x7:4:n 7/7/7/1xx4/3x3/3x3/7")
	t.Log(b)

	assert.True(t, IsJunction(b, board.One, 3, 3))
	assert.True(t, IsTheirJunction(b, board.Two, 3, 3))
	assert.False(t, IsJunction(b, board.Two, 3, 3))
	assert.False(t, IsJunction(b, board.One, 5, 5))

	// An o at the end of the horizontal ray breaks it
	b = board.MustParse("7x7:4:n 7/7/7/oxx4/3x3/3x3/7")
	assert.False(t, IsJunction(b, board.One, 3, 3))
}

func TestJunctionRayMustFit(t *testing.T) {
	// The x pieces around 1,1 only lie on rays that run off the board
	b := board.MustParse("4x4:3:n 4/4/x3/xx2")
	assert.False(t, IsJunction(b, board.One, 1, 1))

	// 2,2 sees x on the one diagonal ray that fits
	assert.False(t, IsJunction(b, board.One, 2, 2))
}

func TestHasPotential(t *testing.T) {
	// Every window through 2,0 holds both sides
	b := board.MustParse("3x1:3:n xo1")
	assert.False(t, HasPotential(b, board.One, 2, 0))
	assert.False(t, HasPotential(b, board.Two, 2, 0))

	b = board.MustParse("4x1:3:n xo2")
	assert.True(t, HasPotential(b, board.One, 3, 0))

	// Windows that would leave the board are ignored
	b = board.MustParse("2x2:3:n 2/2")
	assert.False(t, HasPotential(b, board.One, 0, 0))
}

func TestScanLine(t *testing.T) {
	b := board.MustParse("5x1:3:n xo1x1")
	r := scanLine(b, 0, 0, 1, 0, 5, board.One)
	assert.True(t, r.fits)
	assert.Equal(t, 2, r.own)
	assert.Equal(t, 1, r.other)
	assert.Equal(t, board.NewMove(4, 0), r.lastEmpty)

	r = scanLine(b, 3, 0, 1, 0, 3, board.One)
	assert.False(t, r.fits)
}
