// Package cache is the read cache of the pseudo-ledger core.
//
// Every key embeds the generation of its group. A mutation bumps the
// generation, which makes every entry written under an older generation
// unreachable at once; stale values then simply expire. Only non-sensitive
// views (identity summaries, ledger summaries) are cached. Decrypted
// identity mappings never are.
package cache

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/cache_mock.go -package=mock

// Cache stores opaque values under generation-scoped keys.
type Cache interface {
	// Get returns the value under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Generation returns the current generation of groupID. Groups that were
	// never invalidated are at generation 0.
	Generation(ctx context.Context, groupID int64) (int64, error)

	// Invalidate atomically advances the generation of groupID.
	Invalidate(ctx context.Context, groupID int64) error
}

// Kind names a cached view.
type Kind string

const (
	KindIdentities Kind = "identities"
	KindLedger     Kind = "ledger"
)

const keyPrefix = "pl"

// Key builds the cache key of a view: pl:{group}:g{gen}:{kind}:{requester}.
func Key(groupID, generation int64, kind Kind, requesterID string) string {
	return fmt.Sprintf("%s:%d:g%d:%s:%s", keyPrefix, groupID, generation, kind, requesterID)
}

func groupPrefix(groupID int64) string {
	return fmt.Sprintf("%s:%d:", keyPrefix, groupID)
}

func generationKey(groupID int64) string {
	return fmt.Sprintf("%s:%d:gen", keyPrefix, groupID)
}
