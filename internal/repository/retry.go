package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prateek8318/RankUpAPI-sub001/internal/apperr"
	"github.com/rs/zerolog/log"
)

// ErrStaleVersion is returned by versioned updates when the row was modified
// since it was read. Services re-read and re-apply; it is never retried here
// because the caller's in-memory state is what went stale.
var ErrStaleVersion = errors.New("stale attempt version")

const (
	maxAttempts    = 3
	initialBackoff = 50 * time.Millisecond
)

// withRetry runs op, retrying lock conflicts and timeouts a bounded number of
// times with doubling backoff. Exhausted retries surface as apperr.ErrTransient
// so controllers report them as 5xx rather than a business failure.
func withRetry(op func() error) error {
	backoff := initialBackoff
	var err error
	for i := 0; i < maxAttempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Retryable storage error, backing off")
		time.Sleep(backoff)
		backoff *= 2
	}
	return apperr.Transientf("retries exhausted: %v", err)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock not available
			return true
		}
	}
	return false
}
