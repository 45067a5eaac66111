package service

import (
	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
)

// TimeGovernor computes how much active (non-paused) time an attempt has
// consumed and whether it has hit its hard deadline. Elapsed time accrues in
// wall-clock terms minus genuinely-paused intervals only, so pausing near the
// deadline and resuming later cannot bank extra time.
type TimeGovernor struct {
	clock Clock
}

func NewTimeGovernor(clock Clock) *TimeGovernor {
	return &TimeGovernor{clock: clock}
}

// ElapsedActiveSeconds is (now - StartedAt) minus accumulated pause time and,
// if the attempt is currently paused, minus the in-flight pause interval.
// Clock adjustments can make the raw arithmetic negative; clamp to zero.
func (g *TimeGovernor) ElapsedActiveSeconds(attempt *model.Attempt) int {
	now := g.clock.Now()

	elapsed := int(now.Sub(attempt.StartedAt).Seconds())
	paused := attempt.TotalPauseSeconds
	if attempt.Status == model.AttemptPaused && attempt.LastPauseAt != nil {
		current := int(now.Sub(*attempt.LastPauseAt).Seconds())
		if current > 0 {
			paused += current
		}
	}

	active := elapsed - paused
	if active < 0 {
		return 0
	}
	return active
}

func (g *TimeGovernor) RemainingSeconds(attempt *model.Attempt, assessment *model.Assessment) int {
	remaining := assessment.DurationMinutes*60 - g.ElapsedActiveSeconds(attempt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *TimeGovernor) IsExpired(attempt *model.Attempt, assessment *model.Assessment) bool {
	return g.RemainingSeconds(attempt, assessment) == 0
}
