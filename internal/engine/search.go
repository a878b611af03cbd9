package engine

import (
	"github.com/hailam/connectk/internal/board"
)

// Action is the outcome of a root search: the best move and its value.
type Action struct {
	Score int
	Move  board.Move
}

// searcher runs one alpha-beta search for side me. It is owned by a single
// ChooseMove call and is not safe for concurrent use.
type searcher struct {
	me    board.Side
	them  board.Side
	tm    *TimeManager
	cache *EvalCache
	nodes uint64
}

func newSearcher(me board.Side, tm *TimeManager, cache *EvalCache) *searcher {
	return &searcher{me: me, them: me.Other(), tm: tm, cache: cache}
}

// Nodes returns the number of positions placed so far.
func (s *searcher) Nodes() uint64 {
	return s.nodes
}

// evaluate scores a leaf, going through the cache when the board is hashed.
func (s *searcher) evaluate(b board.State) int {
	h, ok := b.(board.Hasher)
	if s.cache == nil || !ok {
		return Evaluate(b, s.me)
	}
	key := cacheKey(h.Hash(), s.me)
	if v, hit := s.cache.Probe(key); hit {
		return v
	}
	v := Evaluate(b, s.me)
	s.cache.Store(key, v)
	return v
}

// rootMax searches every root candidate and returns the best one. An
// immediate or proven win returns at once, before the deadline check. A search interrupted by the deadline
// returns an Action scored CancelValue.
func (s *searcher) rootMax(b board.State, depth int) Action {
	alpha, beta := NegativeInfinity, PositiveInfinity
	best := Action{Score: NegativeInfinity, Move: board.NoMove}

	for _, m := range Candidates(b, s.me, true) {
		if b.At(m.X, m.Y) != board.Empty {
			continue
		}
		child := b.Place(m, s.me)
		s.nodes++

		if child.Result().Winner() == s.me {
			return Action{Score: WinValue, Move: m}
		}
		v := s.childValue(child, alpha, beta, depth-1, s.minValue)
		if v == WinValue {
			return Action{Score: WinValue, Move: m}
		}
		if v == CancelValue || s.tm.ShouldStop() {
			return Action{Score: CancelValue, Move: board.NoMove}
		}
		if v > alpha {
			alpha = v
			best = Action{Score: v, Move: m}
		}
	}
	return best
}

// maxValue is the node where me moves.
func (s *searcher) maxValue(b board.State, alpha, beta, depth int) int {
	if depth <= 0 {
		return s.evaluate(b)
	}
	v := NegativeInfinity
	for _, m := range Candidates(b, s.me, true) {
		if b.At(m.X, m.Y) != board.Empty {
			continue
		}
		child := b.Place(m, s.me)
		s.nodes++
		if s.tm.ShouldStop() {
			return CancelValue
		}
		if child.Result().Winner() == s.me {
			return WinValue
		}
		cv := s.childValue(child, alpha, beta, depth-1, s.minValue)
		if cv == CancelValue {
			return CancelValue
		}

		v = max(v, cv)
		if v >= beta {
			return v
		}
		alpha = max(alpha, v)
	}
	return v
}

// minValue is the node where the opponent moves.
func (s *searcher) minValue(b board.State, alpha, beta, depth int) int {
	if depth <= 0 {
		return s.evaluate(b)
	}
	v := PositiveInfinity
	for _, m := range Candidates(b, s.me, false) {
		if b.At(m.X, m.Y) != board.Empty {
			continue
		}
		child := b.Place(m, s.them)
		s.nodes++
		if s.tm.ShouldStop() {
			return CancelValue
		}
		if child.Result().Winner() == s.them {
			return LoseValue
		}
		cv := s.childValue(child, alpha, beta, depth-1, s.maxValue)
		if cv == CancelValue {
			return CancelValue
		}

		v = min(v, cv)
		if v <= alpha {
			return v
		}
		beta = min(beta, v)
	}
	return v
}

// childValue scores a child that did not end in a win for the side that
// just moved: terminal results map to their fixed values, anything else is
// searched by next.
func (s *searcher) childValue(child board.State, alpha, beta, depth int, next func(board.State, int, int, int) int) int {
	switch r := child.Result(); {
	case r == board.Draw:
		return 0
	case r.Winner() == s.me:
		return WinValue
	case r.Winner() == s.them:
		return LoseValue
	}
	return next(child, alpha, beta, depth)
}
