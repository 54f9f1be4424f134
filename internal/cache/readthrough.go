package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/metrics"
)

// Fetch serves a view from the cache or loads and stores it.
//
// The generation is read before load runs, so a value loaded while a
// mutation commits is written under a generation the mutation retires.
// Cache faults are logged and degrade to a plain load.
func Fetch[T any](ctx context.Context, c Cache, groupID int64, kind Kind, requesterID string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx)

	gen, err := c.Generation(ctx, groupID)
	if err != nil {
		metrics.CacheRequests.WithLabelValues(string(kind), "error").Inc()
		log.Warn().Err(err).Str("func", "cache.Fetch").Int64("group_id", groupID).Msg("cache generation unavailable, loading directly")
		return load(ctx)
	}

	key := Key(groupID, gen, kind, requesterID)

	raw, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues(string(kind), "error").Inc()
		log.Warn().Err(err).Str("func", "cache.Fetch").Str("key", key).Msg("cache read failed")
	case ok:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.CacheRequests.WithLabelValues(string(kind), "hit").Inc()
			return cached, nil
		}
		log.Warn().Str("func", "cache.Fetch").Str("key", key).Msg("dropping undecodable cache entry")
	default:
		metrics.CacheRequests.WithLabelValues(string(kind), "miss").Inc()
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn().Err(err).Str("func", "cache.Fetch").Str("key", key).Msg("cache write failed")
	}

	return value, nil
}
