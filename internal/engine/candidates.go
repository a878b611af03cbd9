package engine

import (
	"slices"

	"github.com/hailam/connectk/internal/board"
)

// Candidates returns the cells worth searching for the side to move, best
// first. forMaximizer selects whose move it is: me when true, the opponent
// otherwise. Gravity boards ignore it.
//
// Under gravity every column is returned once, center-out, with the
// placeholder row H-1; the search skips columns whose top cell is taken.
func Candidates(b board.State, me board.Side, forMaximizer bool) []board.Move {
	if b.Gravity() {
		return columnOrder(b.Width(), b.Height())
	}
	mover := me
	if !forMaximizer {
		mover = me.Other()
	}

	moves := collect(b, func(x, y int) bool {
		return HasPotential(b, mover, x, y) && near(b, mover, x, y)
	})
	if len(moves) == 0 {
		moves = collect(b, func(x, y int) bool {
			return near(b, mover, x, y)
		})
	}
	orderByCenter(moves, b.Width()/2, b.Height()/2)
	return moves
}

// columnOrder lists the columns of a width w board from the center out:
// mid, mid-1, mid+1, mid-2, mid+2, ...
func columnOrder(w, h int) []board.Move {
	moves := make([]board.Move, 0, w)
	mid := w / 2
	moves = append(moves, board.Move{X: mid, Y: h - 1})
	for off := 1; len(moves) < w; off++ {
		if x := mid - off; x >= 0 {
			moves = append(moves, board.Move{X: x, Y: h - 1})
		}
		if x := mid + off; x < w {
			moves = append(moves, board.Move{X: x, Y: h - 1})
		}
	}
	return moves
}

// collect scans empty cells column by column and keeps those accepted by keep.
func collect(b board.State, keep func(x, y int) bool) []board.Move {
	var moves []board.Move
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.At(x, y) == board.Empty && keep(x, y) {
				moves = append(moves, board.Move{X: x, Y: y})
			}
		}
	}
	return moves
}

// near reports whether (x, y) touches a piece, or for K >= 3 sits on a
// junction of either side.
func near(b board.State, s board.Side, x, y int) bool {
	if hasNeighbor(b, x, y) {
		return true
	}
	if b.K() < 3 {
		return false
	}
	return IsJunction(b, s, x, y) || IsTheirJunction(b, s, x, y)
}

func hasNeighbor(b board.State, x, y int) bool {
	for _, d := range rays {
		nx, ny := x+d[0], y+d[1]
		if inBounds(b, nx, ny) && b.At(nx, ny) != board.Empty {
			return true
		}
	}
	return false
}

// orderByCenter stable-sorts moves by distance to (cx, cy). Squared
// distance orders the same as Euclidean distance.
func orderByCenter(moves []board.Move, cx, cy int) {
	slices.SortStableFunc(moves, func(a, b board.Move) int {
		return dist2(a, cx, cy) - dist2(b, cx, cy)
	})
}

func dist2(m board.Move, cx, cy int) int {
	dx, dy := m.X-cx, m.Y-cy
	return dx*dx + dy*dy
}
