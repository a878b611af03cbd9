package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Notation strings describe a position in two fields:
//
//	<W>x<H>:<K>:<g|n> <rows>
//
// The rows field lists the board top row first, rows separated by '/'.
// 'x' is a piece of side One, 'o' a piece of side Two and a decimal
// number is a run of empty cells. An empty 7x6 connect-four board is
//
//	7x6:4:g 7/7/7/7/7/7
//
// The rows field may be omitted for an empty board.

// ParseNotation parses a notation string and returns a Grid.
func ParseNotation(s string) (*Grid, error) {
	parts := strings.Fields(s)
	if len(parts) < 1 || len(parts) > 2 {
		return nil, fmt.Errorf("%w: need 1 or 2 fields, got %d", ErrInvalidNotation, len(parts))
	}

	// Parse geometry (field 0)
	width, height, k, gravity, err := parseGeometry(parts[0])
	if err != nil {
		return nil, err
	}
	g, err := NewGrid(width, height, k, gravity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNotation, err)
	}
	if len(parts) == 1 {
		return g, nil
	}

	// Parse cell placement (field 1)
	if err := parseRows(g, parts[1]); err != nil {
		return nil, err
	}
	if g.gravity {
		if err := g.checkSupported(); err != nil {
			return nil, err
		}
	}

	// Update derived state
	g.hash = g.ComputeHash()
	g.result = g.scanResult()
	return g, nil
}

// MustParse is ParseNotation for literals known to be valid.
func MustParse(s string) *Grid {
	g, err := ParseNotation(s)
	if err != nil {
		panic(err)
	}
	return g
}

// parseGeometry parses "<W>x<H>:<K>:<g|n>".
func parseGeometry(field string) (width, height, k int, gravity bool, err error) {
	dims := strings.Split(field, ":")
	if len(dims) != 3 {
		return 0, 0, 0, false, fmt.Errorf("%w: geometry %q is not WxH:K:g", ErrInvalidNotation, field)
	}
	ws, hs, ok := strings.Cut(dims[0], "x")
	if !ok {
		return 0, 0, 0, false, fmt.Errorf("%w: size %q is not WxH", ErrInvalidNotation, dims[0])
	}
	if width, err = strconv.Atoi(ws); err != nil {
		return 0, 0, 0, false, fmt.Errorf("%w: width %q", ErrInvalidNotation, ws)
	}
	if height, err = strconv.Atoi(hs); err != nil {
		return 0, 0, 0, false, fmt.Errorf("%w: height %q", ErrInvalidNotation, hs)
	}
	if k, err = strconv.Atoi(dims[1]); err != nil {
		return 0, 0, 0, false, fmt.Errorf("%w: k %q", ErrInvalidNotation, dims[1])
	}
	switch dims[2] {
	case "g":
		gravity = true
	case "n":
		gravity = false
	default:
		return 0, 0, 0, false, fmt.Errorf("%w: gravity flag %q must be g or n", ErrInvalidNotation, dims[2])
	}
	return width, height, k, gravity, nil
}

// parseRows parses the cell placement section of a notation string.
func parseRows(g *Grid, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != g.height {
		return fmt.Errorf("%w: need %d rows, got %d", ErrInvalidNotation, g.height, len(rows))
	}

	for i, rowStr := range rows {
		y := g.height - 1 - i // notation starts from the top row
		x := 0
		for j := 0; j < len(rowStr); {
			ch := rowStr[j]
			if ch >= '0' && ch <= '9' {
				// Skip a run of empty cells
				end := j
				for end < len(rowStr) && rowStr[end] >= '0' && rowStr[end] <= '9' {
					end++
				}
				n, err := strconv.Atoi(rowStr[j:end])
				if err != nil || n > g.width-x {
					return fmt.Errorf("%w: row %d has more than %d cells", ErrInvalidNotation, y, g.width)
				}
				x += n
				j = end
				continue
			}
			c, ok := CellFromChar(ch)
			if !ok {
				return fmt.Errorf("%w: invalid cell character %q", ErrInvalidNotation, ch)
			}
			if x >= g.width {
				return fmt.Errorf("%w: too many cells in row %d", ErrInvalidNotation, y)
			}
			g.set(x, y, c)
			x++
			j++
		}
		if x != g.width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidNotation, y, x, g.width)
		}
	}
	return nil
}

// checkSupported rejects gravity positions with floating pieces.
func (g *Grid) checkSupported() error {
	for x := 0; x < g.width; x++ {
		for y := 1; y < g.height; y++ {
			if g.At(x, y) != Empty && g.At(x, y-1) == Empty {
				return fmt.Errorf("%w: piece at %d,%d is not supported", ErrInvalidNotation, x, y)
			}
		}
	}
	return nil
}

// Notation returns the notation string for the grid.
func (g *Grid) Notation() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(g.width))
	sb.WriteByte('x')
	sb.WriteString(strconv.Itoa(g.height))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(g.k))
	if g.gravity {
		sb.WriteString(":g ")
	} else {
		sb.WriteString(":n ")
	}

	for y := g.height - 1; y >= 0; y-- {
		empty := 0
		for x := 0; x < g.width; x++ {
			c := g.At(x, y)
			if c == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(c.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if y > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
