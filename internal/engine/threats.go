package engine

import "github.com/hailam/connectk/internal/board"

// threatBonus is awarded to a side whose threats fit the parity pattern that
// wins a filled-up gravity board.
const threatBonus = 100

// threatTally counts, for one side, the distinct columns holding a threat of
// each class. Rows are numbered from 1 at the bottom for parity.
type threatTally struct {
	uo, ue int // unshared odd, unshared even
	so, se int // shared odd, shared even
}

func (t threatTally) odd() int  { return t.uo + t.so }
func (t threatTally) even() int { return t.ue + t.se }

// threatCounts classifies the threats of both sides. A threat is shared when
// the opponent has a threat in the same column at the same row or below.
func threatCounts(threats [3][]board.Move) [3]threatTally {
	var out [3]threatTally
	for _, s := range []board.Side{board.One, board.Two} {
		seen := make(map[[3]int]bool)
		for _, t := range threats[s] {
			shared := false
			for _, o := range threats[s.Other()] {
				if o.X == t.X && o.Y <= t.Y {
					shared = true
					break
				}
			}
			odd := (t.Y+1)%2 == 1
			key := [3]int{t.X, b2i(shared), b2i(odd)}
			if seen[key] {
				continue
			}
			seen[key] = true

			switch {
			case shared && odd:
				out[s].so++
			case shared:
				out[s].se++
			case odd:
				out[s].uo++
			default:
				out[s].ue++
			}
		}
	}
	return out
}

// parityBonus applies the odd/even threat rules. The rules are stated for
// the first mover m (side One) and the second mover o (side Two); the
// result is indexed by side.
func parityBonus(width, height int, tally [3]threatTally) [3]int {
	m, o := tally[board.One], tally[board.Two]
	var mWins, oWins bool

	switch {
	case height%2 == 0:
		mWins = m.uo-1 == o.uo ||
			(m.uo == o.uo && m.so%2 == 1) ||
			(o.uo == 0 && m.odd()%2 == 1)
		oWins = (m.odd() == 0 && o.even() > 0) ||
			o.uo-2 == m.uo ||
			(m.uo == o.uo && o.so > 0 && o.so%2 == 0) ||
			(o.uo-1 == m.uo && o.so > 0) ||
			(m.uo == 0 && o.uo == 1 && o.so > 0) ||
			(o.odd() > 0 && o.odd()%2 == 0 && m.uo == 0)

	case (width*height)%2 == 0:
		mWins = m.ue-1 == o.ue ||
			m.se%2 == 1 ||
			(m.even() == 1 && o.odd() == 1)
		oWins = o.odd() > 0 ||
			(o.even() > 0 && o.even()%2 == 0 && (o.ue-2 == m.ue || o.se == m.se))

	default:
		mWins = m.odd() > 0 ||
			(m.even() > 0 && m.even()%2 == 0 && (m.ue-2 == o.ue || m.se == o.se))
		oWins = o.ue-1 == m.ue ||
			o.se%2 == 1 ||
			(o.even() == 1 && m.odd() == 1)
	}

	var bonus [3]int
	if mWins {
		bonus[board.One] = threatBonus
	}
	if oWins {
		bonus[board.Two] = threatBonus
	}
	return bonus
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}
