package engine

import (
	"context"
	"time"

	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

const (
	moveOverhead = 300 * time.Millisecond
	minTimeLimit = 1 * time.Millisecond
)

type timeManager struct {
	start     time.Time
	limits    LimitsType
	softLimit time.Duration
	hardLimit time.Duration
	lastBest  Move
	unstable  bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func newTimeManager(ctx context.Context, start time.Time,
	limits LimitsType, p *Position) *timeManager {

	var tm = &timeManager{
		start:  start,
		limits: limits,
	}

	if limits.Infinite || limits.Ponder {
		// run until an external stop
	} else if limits.MoveTime > 0 {
		tm.hardLimit = fixedBudget(time.Duration(limits.MoveTime) * time.Millisecond)
	} else if limits.Mate > 0 {
		tm.hardLimit = fixedBudget(time.Duration(limits.Mate) * time.Millisecond)
	} else if limits.BlackTime > 0 || limits.WhiteTime > 0 || limits.Byoyomi > 0 {
		var main, inc time.Duration
		if p.BlackMove {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		}
		var byoyomi = time.Duration(limits.Byoyomi) * time.Millisecond
		tm.softLimit, tm.hardLimit = calcLimits(main, inc, byoyomi)
	}

	if tm.hardLimit != 0 {
		tm.ctx, tm.cancel = context.WithDeadline(ctx, start.Add(tm.hardLimit))
	} else {
		tm.ctx, tm.cancel = context.WithCancel(ctx)
	}
	return tm
}

func (tm *timeManager) IsDone() bool {
	return tm.ctx.Err() != nil
}

func (tm *timeManager) OnNodesChanged(nodes int) {
	if tm.limits.Nodes > 0 && nodes >= tm.limits.Nodes {
		tm.cancel()
	}
}

func (tm *timeManager) OnIterationComplete(line mainLine) {
	if len(line.moves) != 0 {
		tm.unstable = tm.lastBest != MoveEmpty && tm.lastBest != line.moves[0]
		tm.lastBest = line.moves[0]
	}
	if tm.limits.Infinite || tm.limits.Ponder {
		return
	}
	if tm.limits.Depth != 0 && line.depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if line.score >= winIn(line.depth-5) ||
		line.score <= lossIn(line.depth-5) {
		tm.cancel()
		return
	}
	var soft = tm.softLimit
	if tm.unstable && soft != 0 {
		// an unstable best move earns extra thinking time
		soft = soft * 4 / 3
		if tm.hardLimit != 0 && soft > tm.hardLimit {
			soft = tm.hardLimit
		}
	}
	if soft != 0 &&
		time.Since(tm.start) >= soft {
		tm.cancel()
		return
	}
}

func (tm *timeManager) Close() {
	tm.cancel()
}

func calcLimits(main, inc, byoyomi time.Duration) (soft, hard time.Duration) {
	const movesDivisor = 35

	if byoyomi > 0 {
		var budget = main + byoyomi - moveOverhead
		if budget < minTimeLimit {
			budget = minTimeLimit
		}
		// final push: main time nearly gone, spend the full period
		if main <= byoyomi*6/5 {
			return budget, budget
		}
		soft = main/movesDivisor + byoyomi*9/10
		hard = limitDuration(soft*3, minTimeLimit, budget)
		soft = limitDuration(soft, minTimeLimit, budget)
		return soft, hard
	}

	main -= moveOverhead
	if main < minTimeLimit {
		main = minTimeLimit
	}
	var ideal = main/movesDivisor + inc*3/4
	soft = limitDuration(ideal*7/10, minTimeLimit, main)
	hard = limitDuration(ideal*21/10, minTimeLimit, main)
	return soft, hard
}

// fixedBudget keeps the communication margin out of an exact
// per-move allowance.
func fixedBudget(d time.Duration) time.Duration {
	d -= moveOverhead
	if d < minTimeLimit {
		d = minTimeLimit
	}
	return d
}

func limitDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
