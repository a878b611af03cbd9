// Package storage keeps arena game records and per-player match statistics
// in BadgerDB.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/connectk/internal/board"
)

// ErrNotFound is returned when a key is absent.
var ErrNotFound = errors.New("not found")

// Storage key prefixes
const (
	prefixGame  = "game/"
	prefixStats = "stats/"
)

const maxConflictRetries = 16

// GameRecord is one finished arena game.
type GameRecord struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	K         int           `json:"k"`
	Gravity   bool          `json:"gravity"`
	PlayerOne string        `json:"player_one"`
	PlayerTwo string        `json:"player_two"`
	Moves     []board.Move  `json:"moves"`
	Result    board.Result  `json:"result"`
	Duration  time.Duration `json:"duration"`
	PlayedAt  time.Time     `json:"played_at"`
}

// Key identifies a record by an xxhash of its geometry, players, start
// time and moves.
func (r *GameRecord) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d:%d:%v|%s|%s|%d|", r.Width, r.Height, r.K, r.Gravity,
		r.PlayerOne, r.PlayerTwo, r.PlayedAt.UnixNano())
	for _, m := range r.Moves {
		sb.WriteString(m.String())
		sb.WriteByte(';')
	}
	return strconv.FormatUint(xxhash.Sum64String(sb.String()), 16)
}

// Winner returns the name of the winning player, or "" for a draw.
func (r *GameRecord) Winner() string {
	switch r.Result {
	case board.OneWins:
		return r.PlayerOne
	case board.TwoWins:
		return r.PlayerTwo
	}
	return ""
}

// PlayerStats aggregates the results of one player.
type PlayerStats struct {
	Name           string         `json:"name"`
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsBySide     map[string]int `json:"wins_by_side"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewPlayerStats returns empty statistics for a player.
func NewPlayerStats(name string) *PlayerStats {
	return &PlayerStats{
		Name:       name,
		WinsBySide: make(map[string]int),
	}
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *PlayerStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// apply folds one game into the statistics of the player on side.
func (s *PlayerStats) apply(rec *GameRecord, side board.Side) {
	s.GamesPlayed++
	s.TotalPlayTime += rec.Duration

	switch rec.Result.Winner() {
	case board.NoSide:
		s.Draws++
		s.CurrentStreak = 0
	case side:
		s.Wins++
		s.WinsBySide[side.String()]++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestWinStrk {
			s.LongestWinStrk = s.CurrentStreak
		}
	default:
		s.Losses++
		s.CurrentStreak = 0
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database under dataDir, or under the platform data
// directory when dataDir is empty.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	return open(badger.DefaultOptions(dbDir))
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // Disable logging
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordGame stores a finished game and updates both players' statistics
// in one transaction. It returns the record key.
func (s *Storage) RecordGame(rec *GameRecord) (string, error) {
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	var key string
	update := func(txn *badger.Txn) error {
		// Identical games recorded at the same instant get a counter suffix.
		key = rec.Key()
		for n := 1; ; n++ {
			_, err := txn.Get([]byte(prefixGame + key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				break
			}
			if err != nil {
				return err
			}
			key = rec.Key() + "-" + strconv.Itoa(n)
		}
		if err := txn.Set([]byte(prefixGame+key), data); err != nil {
			return err
		}
		for _, p := range []struct {
			name string
			side board.Side
		}{{rec.PlayerOne, board.One}, {rec.PlayerTwo, board.Two}} {
			stats, err := loadStats(txn, p.name)
			if err != nil {
				return err
			}
			stats.apply(rec, p.side)
			if err := saveJSON(txn, prefixStats+p.name, stats); err != nil {
				return err
			}
		}
		return nil
	}
	// Concurrent arena games update the same stats keys.
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = s.db.Update(update); !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("record game %s: %w", rec.Key(), err)
	}
	return key, nil
}

// LoadGame returns the record stored under key.
func (s *Storage) LoadGame(key string) (*GameRecord, error) {
	rec := &GameRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixGame + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Games returns up to limit stored records in key order. A limit of 0
// returns all of them.
func (s *Storage) Games(limit int) ([]*GameRecord, error) {
	var out []*GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// LoadStats returns the statistics of a player, empty if none exist.
func (s *Storage) LoadStats(name string) (*PlayerStats, error) {
	var stats *PlayerStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn, name)
		return err
	})
	return stats, err
}

// Players returns the statistics of every player seen so far.
func (s *Storage) Players() ([]*PlayerStats, error) {
	var out []*PlayerStats
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixStats)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stats := NewPlayerStats("")
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
			out = append(out, stats)
		}
		return nil
	})
	return out, err
}

func loadStats(txn *badger.Txn, name string) (*PlayerStats, error) {
	stats := NewPlayerStats(name)
	item, err := txn.Get([]byte(prefixStats + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil // Use empty stats
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

func saveJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}
