package book

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/storage"
)

func TestBookReadAndProbe(t *testing.T) {
	g := board.MustGrid(7, 6, 4, true)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, g.Hash())
	binary.Write(&buf, binary.BigEndian, uint16(3)) // x
	binary.Write(&buf, binary.BigEndian, uint16(0)) // y
	binary.Write(&buf, binary.BigEndian, uint16(100))
	binary.Write(&buf, binary.BigEndian, uint16(0))

	book, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, book.Size())

	move, found := book.Probe(g)
	require.True(t, found)
	assert.Equal(t, board.Move{X: 3, Y: 0}, move)
}

func TestBookMiss(t *testing.T) {
	book := New()
	move, found := book.Probe(board.MustGrid(7, 6, 4, true))
	assert.False(t, found)
	assert.Equal(t, board.NoMove, move)

	var nilBook *Book
	_, found = nilBook.Probe(board.MustGrid(3, 3, 3, false))
	assert.False(t, found)
	assert.Zero(t, nilBook.Size())
}

func TestCorruptBook(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, entrySize+3)))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSkipsUnplayableMoves(t *testing.T) {
	g := board.MustParse("3x3:3:n 3/3/x2")
	book := New()
	book.Add(g.Hash(), board.Move{X: 0, Y: 0}, 50) // occupied
	book.Add(g.Hash(), board.Move{X: 1, Y: 1}, 1)

	entries := book.ProbeAll(g)
	require.Len(t, entries, 1)
	assert.Equal(t, board.Move{X: 1, Y: 1}, entries[0].Move)

	move, found := book.Probe(g)
	require.True(t, found)
	assert.Equal(t, board.Move{X: 1, Y: 1}, move)
}

func TestWeightedChoice(t *testing.T) {
	g := board.MustGrid(7, 6, 4, true)
	book := New()
	book.Seed(7)
	book.Add(g.Hash(), board.Move{X: 3, Y: 0}, 9)
	book.Add(g.Hash(), board.Move{X: 2, Y: 0}, 1)
	book.Add(g.Hash(), board.Move{X: 3, Y: 0}, 0xfff0) // saturates

	entries := book.ProbeAll(g)
	require.Len(t, entries, 2)
	assert.Equal(t, uint16(0xffff), entries[0].Weight)

	counts := map[int]int{}
	for range 200 {
		m, _ := book.Probe(g)
		counts[m.X]++
	}
	assert.Greater(t, counts[3], counts[2])
}

func TestFromGamesRoundTrip(t *testing.T) {
	// x wins on the bottom row, o never gets credit
	win := &storage.GameRecord{
		Width: 7, Height: 6, K: 4, Gravity: true,
		PlayerOne: "a", PlayerTwo: "b",
		Moves: []board.Move{
			{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 0}, {X: 2, Y: 1},
			{X: 4, Y: 0}, {X: 4, Y: 1}, {X: 5, Y: 0},
		},
		Result: board.OneWins,
	}
	book, err := FromGames([]*storage.GameRecord{win}, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, book.Size())

	empty := board.MustGrid(7, 6, 4, true)
	entries := book.ProbeAll(empty)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Move: board.Move{X: 3, Y: 0}, Weight: 2}, entries[0])

	afterOne, err := empty.Play(board.Move{X: 3}, board.One)
	require.NoError(t, err)
	assert.Empty(t, book.ProbeAll(afterOne), "loser's reply is not booked")

	path := filepath.Join(t.TempDir(), "openings.bin")
	require.NoError(t, book.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, book.Size(), loaded.Size())
	assert.Equal(t, entries, loaded.ProbeAll(empty))
}

func TestFromGamesRejectsBadReplay(t *testing.T) {
	bad := &storage.GameRecord{
		Width: 3, Height: 3, K: 3,
		Moves:  []board.Move{{X: 0, Y: 0}, {X: 0, Y: 0}},
		Result: board.Draw,
	}
	_, err := FromGames([]*storage.GameRecord{bad}, 8)
	assert.ErrorIs(t, err, board.ErrIllegalMove)
}
