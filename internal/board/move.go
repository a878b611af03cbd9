package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Move is a board coordinate. X is the column counted from the left,
// Y the row counted from the bottom.
//
// Under gravity only X carries meaning; the landing row is resolved by Place.
type Move struct {
	X, Y int
}

// NoMove represents an invalid or null move.
var NoMove = Move{X: -1, Y: -1}

// NewMove creates a move at (x, y).
func NewMove(x, y int) Move {
	return Move{X: x, Y: y}
}

// IsNone reports whether m is NoMove.
func (m Move) IsNone() bool {
	return m == NoMove
}

// Same compares two moves the way the game does: by column alone under
// gravity, by full coordinate otherwise.
func (m Move) Same(o Move, gravity bool) bool {
	if gravity {
		return m.X == o.X
	}
	return m == o
}

// String returns the move in "x,y" form.
func (m Move) String() string {
	if m.IsNone() {
		return "none"
	}
	return strconv.Itoa(m.X) + "," + strconv.Itoa(m.Y)
}

// Format returns the protocol token for m: the bare column under gravity.
func (m Move) Format(gravity bool) string {
	if gravity && !m.IsNone() {
		return strconv.Itoa(m.X)
	}
	return m.String()
}

// ParseMove parses a protocol move token. Under gravity a bare column
// ("3") is accepted and the row is left as a placeholder.
func ParseMove(tok string, gravity bool) (Move, error) {
	xs, ys, found := strings.Cut(tok, ",")
	x, err := strconv.Atoi(xs)
	if err != nil {
		return NoMove, fmt.Errorf("%w: bad column in %q", ErrInvalidMove, tok)
	}
	if !found {
		if !gravity {
			return NoMove, fmt.Errorf("%w: %q needs a row without gravity", ErrInvalidMove, tok)
		}
		return Move{X: x, Y: 0}, nil
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return NoMove, fmt.Errorf("%w: bad row in %q", ErrInvalidMove, tok)
	}
	return Move{X: x, Y: y}, nil
}
