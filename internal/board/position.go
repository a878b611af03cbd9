package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidNotation is returned when a position string cannot be parsed.
	ErrInvalidNotation = errors.New("invalid notation")
	// ErrInvalidMove is returned for move tokens that cannot be parsed.
	ErrInvalidMove = errors.New("invalid move")
	// ErrIllegalMove is returned when a move cannot be played on a board.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidDimensions is returned for impossible board geometries.
	ErrInvalidDimensions = errors.New("invalid board dimensions")
)

// State is the board contract the search depends on. Implementations
// must be immutable: Place returns a new value and leaves the receiver
// untouched.
type State interface {
	Width() int
	Height() int
	K() int
	Gravity() bool
	SpacesLeft() int
	At(x, y int) Cell
	Place(m Move, s Side) State
	Result() Result
}

// Hasher is implemented by boards that carry a Zobrist hash.
type Hasher interface {
	Hash() uint64
}

// Grid is the standard State implementation: a W×H array of cells.
type Grid struct {
	width   int
	height  int
	k       int
	gravity bool

	cells      []Cell // row-major, index y*width+x, y=0 is the bottom row
	spacesLeft int

	// Last placement, used for incremental win detection
	last   Move
	result Result

	hash uint64
}

// MaxSide bounds the width and height of a board.
const MaxSide = 1024

// NewGrid creates an empty board.
func NewGrid(width, height, k int, gravity bool) (*Grid, error) {
	if width < 1 || height < 1 || k < 1 || width > MaxSide || height > MaxSide {
		return nil, fmt.Errorf("%w: %dx%d k=%d", ErrInvalidDimensions, width, height, k)
	}
	if k > width && k > height {
		return nil, fmt.Errorf("%w: k=%d does not fit on %dx%d", ErrInvalidDimensions, k, width, height)
	}
	return &Grid{
		width:      width,
		height:     height,
		k:          k,
		gravity:    gravity,
		cells:      make([]Cell, width*height),
		spacesLeft: width * height,
		last:       NoMove,
		hash:       baseHash(width, height, k, gravity),
	}, nil
}

// MustGrid is NewGrid for dimensions known to be valid.
func MustGrid(width, height, k int, gravity bool) *Grid {
	g, err := NewGrid(width, height, k, gravity)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grid) Width() int      { return g.width }
func (g *Grid) Height() int     { return g.height }
func (g *Grid) K() int          { return g.k }
func (g *Grid) Gravity() bool   { return g.gravity }
func (g *Grid) SpacesLeft() int { return g.spacesLeft }
func (g *Grid) Hash() uint64    { return g.hash }
func (g *Grid) Result() Result  { return g.result }

// LastMove returns the most recent placement, or NoMove on a fresh board.
func (g *Grid) LastMove() Move { return g.last }

// InBounds reports whether (x, y) lies on the board.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the cell at (x, y). Off-board coordinates read as Empty.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g.cells[y*g.width+x]
}

// IsEmpty returns true if no piece has been placed yet.
func (g *Grid) IsEmpty() bool {
	return g.spacesLeft == g.width*g.height
}

// Count returns the number of pieces side s has on the board.
func (g *Grid) Count(s Side) int {
	n := 0
	for _, c := range g.cells {
		if c.Is(s) {
			n++
		}
	}
	return n
}

// SideToMove infers whose turn it is from the piece counts.
func (g *Grid) SideToMove() Side {
	if g.Count(One) > g.Count(Two) {
		return Two
	}
	return One
}

// DropRow returns the row a piece dropped in column x lands on, or -1
// if the column is full.
func (g *Grid) DropRow(x int) int {
	if x < 0 || x >= g.width {
		return -1
	}
	for y := 0; y < g.height; y++ {
		if g.cells[y*g.width+x] == Empty {
			return y
		}
	}
	return -1
}

// Resolve returns the square m actually occupies on this board: the
// landing square under gravity, m itself otherwise. ok is false when the
// move cannot be played.
func (g *Grid) Resolve(m Move) (Move, bool) {
	if g.gravity {
		y := g.DropRow(m.X)
		if y < 0 {
			return NoMove, false
		}
		return Move{X: m.X, Y: y}, true
	}
	if !g.InBounds(m.X, m.Y) || g.At(m.X, m.Y) != Empty {
		return NoMove, false
	}
	return m, true
}

// LegalMoves returns every playable move in scan order.
func (g *Grid) LegalMoves() []Move {
	var moves []Move
	if g.gravity {
		for x := 0; x < g.width; x++ {
			if y := g.DropRow(x); y >= 0 {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
		return moves
	}
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if g.cells[y*g.width+x] == Empty {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
	}
	return moves
}

// Copy creates a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	ng := *g
	ng.cells = make([]Cell, len(g.cells))
	copy(ng.cells, g.cells)
	return &ng
}

// Place implements State. Unplayable moves return the receiver unchanged.
func (g *Grid) Place(m Move, s Side) State {
	ng, err := g.Play(m, s)
	if err != nil {
		return g
	}
	return ng
}

// Play returns a new grid with side s placed at m.
func (g *Grid) Play(m Move, s Side) (*Grid, error) {
	if s != One && s != Two {
		return nil, fmt.Errorf("%w: no side to place", ErrIllegalMove)
	}
	if g.result.Over() {
		return nil, fmt.Errorf("%w: game is over (%s)", ErrIllegalMove, g.result)
	}
	sq, ok := g.Resolve(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m.Format(g.gravity))
	}

	ng := g.Copy()
	ng.cells[sq.Y*ng.width+sq.X] = s.Cell()
	ng.spacesLeft--
	ng.last = sq
	ng.hash ^= zobristCell(s, sq.Y*ng.width+sq.X)
	ng.result = ng.detectResult(sq, s)
	return ng, nil
}

// set writes a cell without win detection. Notation parsing uses it to
// build arbitrary positions.
func (g *Grid) set(x, y int, c Cell) {
	idx := y*g.width + x
	if old := g.cells[idx]; old != Empty {
		g.hash ^= zobristCell(old.Side(), idx)
		g.spacesLeft++
	}
	g.cells[idx] = c
	if c != Empty {
		g.hash ^= zobristCell(c.Side(), idx)
		g.spacesLeft--
	}
}

// axes are the four line directions: horizontal, vertical and both diagonals.
var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// detectResult checks the lines through the last placed piece.
func (g *Grid) detectResult(at Move, s Side) Result {
	for _, d := range axes {
		run := 1 + g.runLength(at, d[0], d[1], s) + g.runLength(at, -d[0], -d[1], s)
		if run >= g.k {
			return WinFor(s)
		}
	}
	if g.spacesLeft == 0 {
		return Draw
	}
	return InProgress
}

// runLength counts consecutive pieces of s beyond at in direction (dx, dy).
func (g *Grid) runLength(at Move, dx, dy int, s Side) int {
	n := 0
	x, y := at.X+dx, at.Y+dy
	for g.InBounds(x, y) && g.cells[y*g.width+x].Is(s) {
		n++
		x += dx
		y += dy
	}
	return n
}

// scanResult determines the result of an arbitrary position by scanning
// every window. Positions with runs for both sides report the side that
// has more pieces on the board as the last mover.
func (g *Grid) scanResult() Result {
	var won [3]bool
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := g.At(x, y)
			if c == Empty {
				continue
			}
			for _, d := range axes {
				if 1+g.runLength(Move{X: x, Y: y}, d[0], d[1], c.Side()) >= g.k {
					won[c] = true
				}
			}
		}
	}
	switch {
	case won[OneCell] && won[TwoCell]:
		return WinFor(g.SideToMove().Other())
	case won[OneCell]:
		return OneWins
	case won[TwoCell]:
		return TwoWins
	case g.spacesLeft == 0:
		return Draw
	}
	return InProgress
}

// String renders the board top row first with column indices underneath.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := g.height - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%2d |", y)
		for x := 0; x < g.width; x++ {
			sb.WriteByte(' ')
			sb.WriteByte(g.At(x, y).Char())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   +")
	sb.WriteString(strings.Repeat("--", g.width))
	sb.WriteString("\n    ")
	for x := 0; x < g.width; x++ {
		fmt.Fprintf(&sb, "%2d", x%100)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%s  k=%d gravity=%v  %s\n", g.Notation(), g.k, g.gravity, g.result)
	return sb.String()
}
