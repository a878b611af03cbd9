// Package arena plays series of games between two players and records
// the results.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/connectk/internal/board"
	"github.com/hailam/connectk/internal/storage"
)

// ErrForfeit is returned when a player answers with an unplayable move.
var ErrForfeit = errors.New("player forfeited")

// Config describes a match.
type Config struct {
	Width, Height, K int
	Gravity          bool
	Games            int
	Parallel         int
}

// Score is one player's tally over a match.
type Score struct {
	Wins, Losses, Draws int
}

// Summary is the outcome of a match.
type Summary struct {
	Records []*storage.GameRecord
	Scores  map[string]*Score
	Elapsed time.Duration
}

// Arena runs matches between player A and player B. A moves first in even
// games and B in odd ones.
type Arena struct {
	cfg   Config
	a, b  PlayerFactory
	store *storage.Storage
}

// New creates an arena. store may be nil, in which case nothing is saved.
func New(cfg Config, a, b PlayerFactory, store *storage.Storage) *Arena {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Arena{cfg: cfg, a: a, b: b, store: store}
}

// Run plays every game of the match. Games run concurrently up to the
// configured parallelism; the first failure cancels the rest.
func (ar *Arena) Run(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()
	records := make([]*storage.GameRecord, ar.cfg.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ar.cfg.Parallel)
	for i := 0; i < ar.cfg.Games; i++ {
		g.Go(func() error {
			one, two := ar.a(i), ar.b(i)
			if i%2 == 1 {
				one, two = two, one
			}
			rec, err := ar.Play(gctx, one, two)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			records[i] = rec
			logger.Info().Int("game", i).Str("one", rec.PlayerOne).Str("two", rec.PlayerTwo).
				Str("result", rec.Result.String()).Int("moves", len(rec.Moves)).Msg("game finished")

			if ar.store != nil {
				if _, err := ar.store.RecordGame(rec); err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		Records: records,
		Scores:  tally(records),
		Elapsed: time.Since(start),
	}, nil
}

// Play runs a single game to completion.
func (ar *Arena) Play(ctx context.Context, one, two Player) (*storage.GameRecord, error) {
	pos, err := board.NewGrid(ar.cfg.Width, ar.cfg.Height, ar.cfg.K, ar.cfg.Gravity)
	if err != nil {
		return nil, err
	}
	rec := &storage.GameRecord{
		Width: ar.cfg.Width, Height: ar.cfg.Height, K: ar.cfg.K, Gravity: ar.cfg.Gravity,
		PlayerOne: one.Name(),
		PlayerTwo: two.Name(),
	}
	start := time.Now()

	side := board.One
	for !pos.Result().Over() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := one
		if side == board.Two {
			p = two
		}
		m := p.Move(ctx, pos, side)
		next, err := pos.Play(m, side)
		if err != nil {
			return nil, fmt.Errorf("%w: %s played %s: %w", ErrForfeit, p.Name(), m, err)
		}
		pos = next
		rec.Moves = append(rec.Moves, pos.LastMove())
		side = side.Other()
	}

	rec.Result = pos.Result()
	rec.Duration = time.Since(start)
	rec.PlayedAt = time.Now()
	return rec, nil
}

// tally totals wins, losses and draws per player name.
func tally(records []*storage.GameRecord) map[string]*Score {
	names := lo.Uniq(lo.FlatMap(records, func(r *storage.GameRecord, _ int) []string {
		return []string{r.PlayerOne, r.PlayerTwo}
	}))
	scores := lo.SliceToMap(names, func(n string) (string, *Score) {
		return n, &Score{}
	})
	for _, r := range records {
		winner := r.Winner()
		for _, n := range []string{r.PlayerOne, r.PlayerTwo} {
			switch {
			case winner == "":
				scores[n].Draws++
			case winner == n:
				scores[n].Wins++
			default:
				scores[n].Losses++
			}
		}
	}
	return scores
}
