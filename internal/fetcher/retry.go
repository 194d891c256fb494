package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"fxreport/internal/series"
)

// RetryPolicy bounds the attempts made for one network operation.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy makes three attempts two seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 2 * time.Second}
}

// Retry runs fn until it succeeds, returns a non-transient error, or the policy
// runs out of attempts. Only *TransientError failures are retried; exhaustion
// is reported as *FatalFetchError naming op.
func Retry(ctx context.Context, op string, policy RetryPolicy, logger zerolog.Logger, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := policy.Backoff
	if wait < 0 {
		wait = 0
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(wait)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var transient *TransientError
		if !errors.As(err, &transient) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("backoff", next).
			Msg("transient failure, retrying")
	}

	err := backoff.RetryNotify(operation, b, notify)
	if err == nil {
		return nil
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		logger.Error().Err(err).Str("op", op).Int("attempts", attempt).Msg("max retries reached")
		return &FatalFetchError{Op: op, Attempts: attempt, Err: err}
	}
	return err
}

// Retrying decorates a SnapshotFetcher with a RetryPolicy.
type Retrying struct {
	inner  SnapshotFetcher
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetrying wraps inner so every fetch is retried per policy.
func NewRetrying(inner SnapshotFetcher, policy RetryPolicy, logger zerolog.Logger) *Retrying {
	return &Retrying{
		inner:  inner,
		policy: policy,
		logger: logger.With().Str("component", "retry").Logger(),
	}
}

// FetchSnapshot delegates to the wrapped fetcher under the retry policy.
func (r *Retrying) FetchSnapshot(ctx context.Context, date time.Time) (series.Snapshot, error) {
	var snap series.Snapshot
	op := "fetch snapshot " + date.Format(series.DateLayout)
	err := Retry(ctx, op, r.policy, r.logger, func(ctx context.Context) error {
		s, err := r.inner.FetchSnapshot(ctx, date)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	return snap, err
}

var _ SnapshotFetcher = (*Retrying)(nil)
