package engine

import "github.com/hailam/connectk/internal/board"

// Score values shared by the evaluator and the search.
const (
	WinValue         = 1000
	LoseValue        = -1000
	PositiveInfinity = 100000
	NegativeInfinity = -100000

	// CancelValue marks a search abandoned at the deadline. It is never a
	// real score and must not be compared with one.
	CancelValue = -111111
)

// Junction bonuses for boards without gravity.
const (
	occupiedJunctionBonus = 100
	openJunctionBonus     = 50
)

// windows aggregates every K window of a board, indexed by side.
type windows struct {
	groups  [3][]int        // groups[s][n]: open windows holding n pieces of s
	threats [3][]board.Move // gravity threats per side, deduplicated
}

// scanWindows visits every K window that fits on the board once. A window
// counts toward a side when the opponent has no piece in it.
func scanWindows(b board.State) windows {
	k := b.K()
	var w windows
	w.groups[board.One] = make([]int, k+1)
	w.groups[board.Two] = make([]int, k+1)

	for _, d := range axes {
		for x := 0; x < b.Width(); x++ {
			for y := 0; y < b.Height(); y++ {
				r := scanLine(b, x, y, d[0], d[1], k, board.One)
				if !r.fits {
					continue
				}
				// r.own is One's count, r.other is Two's
				if r.other == 0 && r.own > 0 {
					w.add(b, board.One, r.own, r.lastEmpty)
				}
				if r.own == 0 && r.other > 0 {
					w.add(b, board.Two, r.other, r.lastEmpty)
				}
			}
		}
	}
	return w
}

func (w *windows) add(b board.State, s board.Side, n int, empty board.Move) {
	w.groups[s][n]++
	if !b.Gravity() || n != b.K()-1 || empty.IsNone() {
		return
	}
	// A threat must hang over an empty cell so neither side can fill it yet.
	if empty.Y < 1 || b.At(empty.X, empty.Y-1) != board.Empty {
		return
	}
	for _, t := range w.threats[s] {
		if t == empty {
			return
		}
	}
	w.threats[s] = append(w.threats[s], empty)
}

// total weighs groups by length: a group of n pieces is worth n-1.
func (w *windows) total(s board.Side) int {
	sum := 0
	for n := 2; n < len(w.groups[s]); n++ {
		sum += w.groups[s][n] * (n - 1)
	}
	return sum
}

// Evaluate scores a non-terminal board from me's point of view. A completed
// line still short-circuits: the opponent's to LoseValue first, then me's to
// WinValue.
func Evaluate(b board.State, me board.Side) int {
	w := scanWindows(b)
	them := me.Other()
	k := b.K()

	if w.groups[them][k] > 0 {
		return LoseValue
	}
	if w.groups[me][k] > 0 {
		return WinValue
	}

	var bonus [3]int
	if b.Gravity() {
		bonus = parityBonus(b.Width(), b.Height(), threatCounts(w.threats))
	} else {
		bonus[me] = junctionBonus(b, me)
		bonus[them] = junctionBonus(b, them)
	}

	diff := w.total(me) + bonus[me] - w.total(them) - bonus[them]
	if diff == 0 {
		// Break even positions in favour of the second mover.
		if me == board.Two {
			return 1
		}
		return -1
	}
	return diff
}

// junctionBonus awards side s occupiedJunctionBonus if a cell it holds is a
// junction for it, else openJunctionBonus if an empty cell is.
func junctionBonus(b board.State, s board.Side) int {
	open := false
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			c := b.At(x, y)
			if c != board.Empty && !c.Is(s) {
				continue
			}
			if !junctionFor(b, s, x, y) {
				continue
			}
			if c.Is(s) {
				return occupiedJunctionBonus
			}
			open = true
		}
	}
	if open {
		return openJunctionBonus
	}
	return 0
}
