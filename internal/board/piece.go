package board

// Side identifies one of the two players.
type Side uint8

const (
	NoSide Side = iota
	One         // moves first, drawn as 'x'
	Two         // moves second, drawn as 'o'
)

// Other returns the opposing side.
func (s Side) Other() Side {
	switch s {
	case One:
		return Two
	case Two:
		return One
	default:
		return NoSide
	}
}

// Cell returns the occupancy value a piece of this side leaves on the board.
func (s Side) Cell() Cell {
	return Cell(s)
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case One:
		return "One"
	case Two:
		return "Two"
	default:
		return "None"
	}
}

// Char returns the notation character for the side.
func (s Side) Char() byte {
	return s.Cell().Char()
}

// ParseSide converts "x", "o", "1" or "2" to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "x", "X", "1", "one", "One":
		return One, true
	case "o", "O", "2", "two", "Two":
		return Two, true
	}
	return NoSide, false
}

// Cell is the occupancy of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	OneCell
	TwoCell
)

// Side returns the side occupying the cell, or NoSide if empty.
func (c Cell) Side() Side {
	return Side(c)
}

// Is reports whether the cell is occupied by s.
func (c Cell) Is(s Side) bool {
	return c != Empty && Side(c) == s
}

// Char returns the notation character for the cell.
func (c Cell) Char() byte {
	switch c {
	case OneCell:
		return 'x'
	case TwoCell:
		return 'o'
	default:
		return '.'
	}
}

// CellFromChar converts a notation character to a cell.
func CellFromChar(ch byte) (Cell, bool) {
	switch ch {
	case 'x', 'X':
		return OneCell, true
	case 'o', 'O':
		return TwoCell, true
	case '.':
		return Empty, true
	}
	return Empty, false
}

// Result is the state of the game as seen right after a placement.
type Result uint8

const (
	InProgress Result = iota
	Draw
	OneWins
	TwoWins
)

// WinFor returns the winning result for side s.
func WinFor(s Side) Result {
	switch s {
	case One:
		return OneWins
	case Two:
		return TwoWins
	default:
		return InProgress
	}
}

// Winner returns the winning side, or NoSide for draws and unfinished games.
func (r Result) Winner() Side {
	switch r {
	case OneWins:
		return One
	case TwoWins:
		return Two
	default:
		return NoSide
	}
}

// Over reports whether the game has ended.
func (r Result) Over() bool {
	return r != InProgress
}

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Draw:
		return "draw"
	case OneWins:
		return "x wins"
	case TwoWins:
		return "o wins"
	default:
		return "in progress"
	}
}
