package service

import (
	"context"
	"time"

	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

const sweepBatchSize = 200

// ExpirySweeper periodically finds active attempts whose remaining time has
// reached zero and expires them. It is a safety net behind the request-path
// checks: a user who closes the browser still gets scored at the deadline.
type ExpirySweeper struct {
	attemptRepo repository.AttemptRepository
	attempts    AttemptService
	governor    *TimeGovernor
	interval    time.Duration
}

func NewExpirySweeper(
	attemptRepo repository.AttemptRepository,
	attempts AttemptService,
	governor *TimeGovernor,
	interval time.Duration,
) *ExpirySweeper {
	return &ExpirySweeper{
		attemptRepo: attemptRepo,
		attempts:    attempts,
		governor:    governor,
		interval:    interval,
	}
}

// Run loops until ctx is cancelled. Call in its own goroutine.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		log.Info().Msg("Expiry sweeper disabled")
		return
	}

	log.Info().Dur("interval", s.interval).Msg("Expiry sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every overdue active attempt it can find. Each pass is
// bounded so a stuck database cannot wedge the loop.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	attempts, err := s.attemptRepo.FindActiveWithAssessment(sweepCtx, sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Expiry sweep failed to list active attempts")
		return
	}

	expired := 0
	for i := range attempts {
		attempt := &attempts[i]
		if attempt.Assessment.ID == 0 || !s.governor.IsExpired(attempt, &attempt.Assessment) {
			continue
		}
		// ExpireIfOverdue re-checks under the version token, so racing with a
		// concurrent submit or answer write is safe.
		did, err := s.attempts.ExpireIfOverdue(sweepCtx, attempt.ID)
		if err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Expiry sweep failed for attempt")
			continue
		}
		if did {
			expired++
		}
	}
	if expired > 0 {
		log.Info().Int("expired", expired).Int("scanned", len(attempts)).Msg("Expiry sweep finished")
	}
}
