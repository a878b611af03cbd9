package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/connectk/internal/board"
)

// SearchInfo describes one completed iteration of the search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Move  board.Move
	Fill  int // permille of the evaluation cache written this search
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	MoveTime     time.Duration // Time for this move (0 = no limit)
	Depth        int           // Maximum depth (0 = no limit)
	SafetyMargin time.Duration // Reserved at the end of the move (0 = DefaultSafetyMargin)
}

// Difficulty represents a preset strength.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 200 * time.Millisecond},
	Medium: {Depth: 6, MoveTime: time.Second},
	Hard:   {MoveTime: 5 * time.Second},
}

// ParseDifficulty converts "easy", "medium" or "hard" to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	}
	return Medium, false
}

// Engine chooses moves for K-in-a-row positions.
type Engine struct {
	cache *EvalCache

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with an evaluation cache of cacheSizeMB
// megabytes. A size of 0 disables the cache.
func NewEngine(cacheSizeMB int) *Engine {
	return &Engine{cache: NewEvalCache(cacheSizeMB)}
}

// ChooseMoveMillis picks a move for me within deadlineMillis milliseconds.
// A deadline of zero or less allows no search at all.
func (e *Engine) ChooseMoveMillis(b board.State, me board.Side, deadlineMillis int) board.Move {
	moveTime := time.Duration(deadlineMillis) * time.Millisecond
	if moveTime <= 0 {
		moveTime = time.Nanosecond
	}
	return e.ChooseMove(context.Background(), b, me, SearchLimits{MoveTime: moveTime})
}

// ChooseMove returns a move for me. It returns within the move time plus the
// safety margin, or soon after ctx is cancelled, and always yields a legal
// move while the board has an empty cell. On gravity boards the returned
// move carries the row the piece lands on.
func (e *Engine) ChooseMove(ctx context.Context, b board.State, me board.Side, limits SearchLimits) board.Move {
	if !b.Gravity() && b.SpacesLeft() == b.Width()*b.Height() {
		return board.Move{X: b.Width() / 2, Y: b.Height() / 2}
	}
	return landing(b, e.deepen(ctx, b, me, limits))
}

// deepen runs iterative deepening until a decisive result, the deadline,
// the depth limit or the end of the board.
func (e *Engine) deepen(ctx context.Context, b board.State, me board.Side, limits SearchLimits) board.Move {
	logger := zerolog.Ctx(ctx)

	margin := limits.SafetyMargin
	if margin == 0 {
		margin = DefaultSafetyMargin
	}
	tm := NewTimeManager(ctx, limits.MoveTime, margin)
	if e.cache != nil {
		e.cache.NewSearch()
	}
	s := newSearcher(me, tm, e.cache)

	maxDepth := b.SpacesLeft()
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var done []Action
	for depth := 1; depth <= maxDepth; depth++ {
		a := s.rootMax(b, depth)
		if a.Score == CancelValue {
			logger.Debug().Int("depth", depth).Uint64("nodes", s.Nodes()).
				Dur("elapsed", tm.Elapsed()).Msg("iteration cancelled")
			break
		}
		if a.Move.IsNone() {
			break
		}
		done = append(done, a)
		e.report(s, tm, depth, a)
		logger.Debug().Int("depth", depth).Int("score", a.Score).
			Str("move", a.Move.String()).Uint64("nodes", s.Nodes()).
			Dur("elapsed", tm.Elapsed()).Msg("iteration complete")

		switch a.Score {
		case WinValue, 0:
			return a.Move
		case LoseValue:
			return nonLosing(done)
		}
		if tm.ShouldStop() {
			break
		}
	}

	if len(done) == 0 {
		return firstLegal(b, me)
	}
	return nonLosing(done)
}

func (e *Engine) report(s *searcher, tm *TimeManager, depth int, a Action) {
	if e.OnInfo == nil {
		return
	}
	info := SearchInfo{
		Depth: depth,
		Score: a.Score,
		Nodes: s.Nodes(),
		Time:  tm.Elapsed(),
		Move:  a.Move,
	}
	if e.cache != nil {
		info.Fill = e.cache.Fill()
	}
	e.OnInfo(info)
}

// nonLosing returns the move of the most recent iteration that did not
// prove a loss. When every iteration lost, the latest move is returned.
func nonLosing(done []Action) board.Move {
	for i := len(done) - 1; i >= 0; i-- {
		if done[i].Score != LoseValue {
			return done[i].Move
		}
	}
	return done[len(done)-1].Move
}

// firstLegal is the answer when no iteration finished: the first candidate
// that can be played, or any empty cell.
func firstLegal(b board.State, me board.Side) board.Move {
	for _, m := range Candidates(b, me, true) {
		if b.At(m.X, m.Y) == board.Empty {
			return m
		}
	}
	for x := 0; x < b.Width(); x++ {
		for y := 0; y < b.Height(); y++ {
			if b.At(x, y) == board.Empty {
				return board.Move{X: x, Y: y}
			}
		}
	}
	return board.NoMove
}

// landing resolves a gravity move to the row its piece falls to.
func landing(b board.State, m board.Move) board.Move {
	if !b.Gravity() || m.IsNone() {
		return m
	}
	for y := 0; y < b.Height(); y++ {
		if b.At(m.X, y) == board.Empty {
			return board.Move{X: m.X, Y: y}
		}
	}
	return m
}

// Evaluate returns the static evaluation of b for me.
func (e *Engine) Evaluate(b board.State, me board.Side) int {
	return Evaluate(b, me)
}

// Clear empties the evaluation cache.
func (e *Engine) Clear() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// CacheHitRate returns the evaluation cache hit rate as a percentage.
func (e *Engine) CacheHitRate() float64 {
	if e.cache == nil {
		return 0
	}
	return e.cache.HitRate()
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch score {
	case WinValue:
		return "win"
	case LoseValue:
		return "loss"
	case CancelValue:
		return "cancelled"
	}
	return strconv.Itoa(score)
}
