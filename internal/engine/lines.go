package engine

import "github.com/hailam/connectk/internal/board"

// axes are the four line directions. Each window is scanned once, from its
// low end along the axis.
var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// rays are the eight half-axes leaving a cell.
var rays = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// run summarizes n cells walked along a direction.
type run struct {
	fits      bool       // every cell lies on the board
	own       int        // cells held by the scanning side
	other     int        // cells held by the opponent
	lastEmpty board.Move // last empty cell walked, NoMove if none
}

// blocked reports whether the opponent holds a cell of the run.
func (r run) blocked() bool { return r.other > 0 }

// scanLine walks n cells starting at (x0, y0) in direction (dx, dy),
// counting cells from the point of view of side s. Nothing is counted when
// the run leaves the board.
func scanLine(b board.State, x0, y0, dx, dy, n int, s board.Side) run {
	r := run{lastEmpty: board.NoMove}
	xe, ye := x0+(n-1)*dx, y0+(n-1)*dy
	if n > 0 && (!inBounds(b, x0, y0) || !inBounds(b, xe, ye)) {
		return r
	}
	r.fits = true
	x, y := x0, y0
	for i := 0; i < n; i++ {
		switch c := b.At(x, y); {
		case c == board.Empty:
			r.lastEmpty = board.Move{X: x, Y: y}
		case c.Is(s):
			r.own++
		default:
			r.other++
		}
		x += dx
		y += dy
	}
	return r
}

func inBounds(b board.State, x, y int) bool {
	return x >= 0 && x < b.Width() && y >= 0 && y < b.Height()
}

// HasPotential reports whether (x, y) lies inside at least one K window that
// either side could still complete: a window free of opponent pieces, or
// free of me's pieces. Windows that run off the board do not count.
func HasPotential(b board.State, me board.Side, x, y int) bool {
	k := b.K()
	for _, d := range axes {
		for i := 0; i < k; i++ {
			r := scanLine(b, x-i*d[0], y-i*d[1], d[0], d[1], k, me)
			if r.fits && (!r.blocked() || r.own == 0) {
				return true
			}
		}
	}
	return false
}

// IsJunction reports whether (x, y) joins two or more lines of me that are
// each one piece short: rays of K-1 cells beyond (x, y) holding K-2 of me's
// pieces and none of the opponent's.
func IsJunction(b board.State, me board.Side, x, y int) bool {
	return junctionFor(b, me, x, y)
}

// IsTheirJunction is IsJunction from the opponent's side.
func IsTheirJunction(b board.State, me board.Side, x, y int) bool {
	return junctionFor(b, me.Other(), x, y)
}

func junctionFor(b board.State, s board.Side, x, y int) bool {
	k := b.K()
	if k < 2 {
		return false
	}
	potentials := 0
	for _, d := range rays {
		r := scanLine(b, x+d[0], y+d[1], d[0], d[1], k-1, s)
		if r.fits && !r.blocked() && r.own == k-2 {
			potentials++
			if potentials >= 2 {
				return true
			}
		}
	}
	return false
}
