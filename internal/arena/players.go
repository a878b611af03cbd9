package arena

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/engine"
)

// Player chooses moves for one side of a game.
type Player interface {
	Name() string
	Move(ctx context.Context, b *board.Grid, me board.Side) board.Move
}

// PlayerFactory returns the player for one game. Games run concurrently,
// so a factory must not hand the same stateful player to two games.
type PlayerFactory func(game int) Player

// EnginePlayer searches with its own engine.
type EnginePlayer struct {
	name   string
	eng    *engine.Engine
	limits engine.SearchLimits
}

// NewEnginePlayer creates an engine player with a cache of cacheMB megabytes.
func NewEnginePlayer(name string, cacheMB int, limits engine.SearchLimits) *EnginePlayer {
	return &EnginePlayer{name: name, eng: engine.NewEngine(cacheMB), limits: limits}
}

func (p *EnginePlayer) Name() string { return p.name }

func (p *EnginePlayer) Move(ctx context.Context, b *board.Grid, me board.Side) board.Move {
	return p.eng.ChooseMove(ctx, b, me, p.limits)
}

// RandomPlayer plays a uniformly random legal move.
type RandomPlayer struct {
	name string
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewRandomPlayer creates a random player with a fixed seed.
func NewRandomPlayer(name string, seed uint64) *RandomPlayer {
	return &RandomPlayer{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer) Name() string { return p.name }

func (p *RandomPlayer) Move(_ context.Context, b *board.Grid, _ board.Side) board.Move {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return board.NoMove
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return moves[p.rng.Intn(len(moves))]
}

// ParsePlayer builds a factory from a player spec: "random", "engine", or
// "engine:<easy|medium|hard>". Plain "engine" searches with limits.
func ParsePlayer(spec, name string, cacheMB int, limits engine.SearchLimits, seed uint64) (PlayerFactory, error) {
	kind, level, _ := strings.Cut(spec, ":")
	switch kind {
	case "random":
		if level != "" {
			return nil, fmt.Errorf("player %q: random takes no level", spec)
		}
		return func(game int) Player {
			return NewRandomPlayer(name, seed+uint64(game))
		}, nil
	case "engine":
		if level != "" {
			d, ok := engine.ParseDifficulty(level)
			if !ok {
				return nil, fmt.Errorf("player %q: unknown level %q", spec, level)
			}
			limits = engine.DifficultySettings[d]
		}
		return func(int) Player {
			return NewEnginePlayer(name, cacheMB, limits)
		}, nil
	}
	return nil, fmt.Errorf("player %q: want engine or random", spec)
}
