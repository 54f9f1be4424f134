package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MKhiriev/go-pseudo-ledger/internal/cache"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/metrics"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
)

// mutator runs state changes of a group in one transaction and keeps the
// read cache from serving pre-mutation views.
//
// The group generation is bumped twice: as the last step inside the
// transaction, so a failing bump rolls the change back, and again right
// after commit. A reader that slipped in between the first bump and the
// commit can only have cached under the generation the second bump retires.
type mutator struct {
	tx    store.TxManager
	cache cache.Cache
}

// run executes fn in a transaction. fn returns the id of the group it changed.
func (m mutator) run(ctx context.Context, operation string, fn func(ctx context.Context) (int64, error)) error {
	log := logger.FromContext(ctx)

	var groupID int64
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		id, err := fn(ctx)
		if err != nil {
			return err
		}
		groupID = id

		if err := m.cache.Invalidate(ctx, groupID); err != nil {
			log.Err(err).Str("func", "mutator.run").Str("operation", operation).Int64("group_id", groupID).Msg("cache invalidation failed, rolling back")
			return fmt.Errorf("%w: %w", ErrCacheInvalidation, err)
		}
		return nil
	})
	metrics.LedgerOperations.WithLabelValues(operation, metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	// committed; a failure here leaves staleness bounded by the cache TTL
	if err := m.cache.Invalidate(ctx, groupID); err != nil {
		log.Warn().Err(err).Str("func", "mutator.run").Str("operation", operation).Int64("group_id", groupID).Msg("post-commit cache invalidation failed")
	}
	metrics.CacheInvalidations.Inc()

	return nil
}

const (
	defaultReadAttempts   = 3
	defaultRetryInitial   = 50 * time.Millisecond
	defaultRetryMaxPeriod = 500 * time.Millisecond
)

// readRetrier retries idempotent reads after transient store errors.
// Mutations never go through it.
type readRetrier struct {
	classificator store.ErrorClassificator
	attempts      uint64
	initial       time.Duration
}

func newReadRetrier(classificator store.ErrorClassificator) readRetrier {
	return readRetrier{
		classificator: classificator,
		attempts:      defaultReadAttempts,
		initial:       defaultRetryInitial,
	}
}

func retryRead[T any](ctx context.Context, r readRetrier, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx)

	var result T
	op := func() error {
		var err error
		result, err = fn(ctx)
		if err == nil {
			return nil
		}
		if r.classificator == nil || r.classificator.Classify(err) != store.Retryable {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = defaultRetryMaxPeriod
	b.RandomizationFactor = 0.5

	var retries uint64
	if r.attempts > 1 {
		retries = r.attempts - 1
	}

	notify := func(err error, next time.Duration) {
		metrics.StoreRetries.WithLabelValues(operation).Inc()
		log.Warn().Err(err).Str("func", "retryRead").Str("operation", operation).Dur("next_retry_in", next).Msg("transient store error, retrying")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx), notify); err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
