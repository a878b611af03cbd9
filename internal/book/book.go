// Package book stores opening replies keyed by position hash. Books are
// built from recorded games and consulted before searching.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/storage"
)

// ErrCorrupt is returned for book files that end mid-entry.
var ErrCorrupt = errors.New("corrupt book")

// Entry is one book reply.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Book represents an opening book.
type Book struct {
	entries map[uint64][]Entry

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]Entry),
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// Seed makes Probe's weighted choice reproducible.
func (b *Book) Seed(seed uint64) {
	b.mu.Lock()
	b.rng = rand.New(rand.NewSource(seed))
	b.mu.Unlock()
}

// Add records weight for move m in the position with the given hash.
// Repeated adds of the same move accumulate, saturating at the maximum weight.
func (b *Book) Add(key uint64, m board.Move, weight uint16) {
	list := b.entries[key]
	for i := range list {
		if list[i].Move == m {
			list[i].Weight = addWeight(list[i].Weight, weight)
			return
		}
	}
	b.entries[key] = append(list, Entry{Move: m, Weight: weight})
}

func addWeight(a, b uint16) uint16 {
	if sum := uint32(a) + uint32(b); sum <= 0xffff {
		return uint16(sum)
	}
	return 0xffff
}

// Book entry format, 16 bytes big-endian:
//
//	8 bytes: position hash
//	2 bytes: x
//	2 bytes: y
//	2 bytes: weight
//	2 bytes: reserved
const entrySize = 16

// Load reads a book file.
func Load(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Read loads a book from r.
func Read(r io.Reader) (*Book, error) {
	book := New()
	var entry [entrySize]byte

	for {
		n, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: trailing %d bytes", ErrCorrupt, n)
		}
		if err != nil {
			return nil, err
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		m := board.Move{
			X: int(binary.BigEndian.Uint16(entry[8:10])),
			Y: int(binary.BigEndian.Uint16(entry[10:12])),
		}
		book.Add(key, m, binary.BigEndian.Uint16(entry[12:14]))
	}
	return book, nil
}

// Write serializes the book to w, positions in hash order.
func (b *Book) Write(w io.Writer) error {
	keys := make([]uint64, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var entry [entrySize]byte
	for _, k := range keys {
		for _, e := range b.sorted(k) {
			binary.BigEndian.PutUint64(entry[0:8], k)
			binary.BigEndian.PutUint16(entry[8:10], uint16(e.Move.X))
			binary.BigEndian.PutUint16(entry[10:12], uint16(e.Move.Y))
			binary.BigEndian.PutUint16(entry[12:14], e.Weight)
			if _, err := w.Write(entry[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the book to filename.
func (b *Book) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := b.Write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FromGames builds a book from recorded games. Every move the eventual
// winner made in the first plies plies earns two points, every move of a
// drawn game one point. Lost sides contribute nothing.
func FromGames(records []*storage.GameRecord, plies int) (*Book, error) {
	book := New()
	for _, rec := range records {
		g, err := board.NewGrid(rec.Width, rec.Height, rec.K, rec.Gravity)
		if err != nil {
			return nil, err
		}
		winner := rec.Result.Winner()
		side := board.One
		for i, m := range rec.Moves {
			if i >= plies {
				break
			}
			switch {
			case winner == side:
				book.Add(g.Hash(), m, 2)
			case rec.Result == board.Draw:
				book.Add(g.Hash(), m, 1)
			}
			if g, err = g.Play(m, side); err != nil {
				return nil, fmt.Errorf("replay game %s: %w", rec.Key(), err)
			}
			side = side.Other()
		}
	}
	return book, nil
}

// Probe looks up a position in the book and returns a move using weighted
// random selection. Moves that are not playable on g are skipped.
func (b *Book) Probe(g *board.Grid) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	entries := b.playable(g)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	total := 0
	for _, e := range entries {
		total += int(e.Weight)
	}
	if total == 0 {
		return entries[0].Move, true
	}

	b.mu.Lock()
	r := b.rng.Intn(total)
	b.mu.Unlock()
	for _, e := range entries {
		r -= int(e.Weight)
		if r < 0 {
			return e.Move, true
		}
	}
	return entries[0].Move, true
}

// ProbeAll returns all playable book moves for the position, heaviest first.
func (b *Book) ProbeAll(g *board.Grid) []Entry {
	if b == nil {
		return nil
	}
	return b.playable(g)
}

func (b *Book) playable(g *board.Grid) []Entry {
	var out []Entry
	for _, e := range b.sorted(g.Hash()) {
		if sq, ok := g.Resolve(e.Move); ok && sq == e.Move {
			out = append(out, e)
		}
	}
	return out
}

// sorted returns a copy of the entries for key, heaviest first.
func (b *Book) sorted(key uint64) []Entry {
	result := slices.Clone(b.entries[key])
	slices.SortStableFunc(result, func(x, y Entry) int {
		return int(y.Weight) - int(x.Weight)
	})
	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
