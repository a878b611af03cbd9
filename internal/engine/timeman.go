package engine

import (
	"context"
	"time"
)

// DefaultSafetyMargin is reserved at the end of every move so the answer
// reaches the caller before its deadline.
const DefaultSafetyMargin = 50 * time.Millisecond

// TimeManager decides when a search has to give up.
type TimeManager struct {
	startTime time.Time
	moveTime  time.Duration // 0 means no time limit
	margin    time.Duration
	done      <-chan struct{}
}

// NewTimeManager starts the clock for one move.
func NewTimeManager(ctx context.Context, moveTime, margin time.Duration) *TimeManager {
	if margin < 0 {
		margin = 0
	}
	return &TimeManager{
		startTime: time.Now(),
		moveTime:  moveTime,
		margin:    margin,
		done:      ctx.Done(),
	}
}

// Elapsed returns the time elapsed since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// MoveTime returns the budget for this move.
func (tm *TimeManager) MoveTime() time.Duration {
	return tm.moveTime
}

// ShouldStop returns true once elapsed time plus the safety margin reaches
// the move time, or the context is cancelled.
func (tm *TimeManager) ShouldStop() bool {
	select {
	case <-tm.done:
		return true
	default:
	}
	return tm.moveTime > 0 && tm.Elapsed()+tm.margin >= tm.moveTime
}
