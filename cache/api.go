package cache

import (
	"context"
	"errors"
)

// ErrNoLoader is returned by GetOrLoad when the cache was constructed
// without Options.Loader.
var ErrNoLoader = errors.New("cache: GetOrLoad called but no Loader configured")

// Cache is the external interface to a sharded, TTL-expiring key/value
// store with per-key replay logs.
type Cache interface {
	// Set installs value at key. ttl is the entry's time-to-live in
	// nanoseconds: nil means no TTL was given (an existing key's current
	// expiration, if any, is preserved; a brand new key never expires),
	// while a non-nil ttl — including a zero or negative one, which
	// expires the entry immediately — always resets the deadline.
	// Every Set appends to key's replay log.
	Set(key string, value []byte, ttl *int64)

	// Get returns the value stored at key. ok is false if the key is
	// absent or has expired.
	Get(key string) ([]byte, bool)

	// Replay returns the records written to key within its current
	// replay window, oldest first. ok is false if key is not present in
	// the cache's index; a key that has expired but has not yet been
	// removed by its shard's eviction worker still replays.
	Replay(key string) ([]LogRecord, bool)

	// PruneAllLogs trims every shard's logs against the log-retention
	// horizon. Safe to call concurrently with normal traffic. It also
	// happens on each shard's eviction worker cycle, but a worker only
	// cycles when a SET with a TTL or a due expiry wakes it; a shard with
	// nothing scheduled has its logs pruned only by this call.
	PruneAllLogs()

	// GetOrLoad returns the cached value at key, or invokes Options.Loader
	// on a miss, storing and returning its result with the given ttl (in
	// nanoseconds; a ttl <= 0 stores the result with no expiration).
	// Concurrent GetOrLoad calls for the same key coalesce into a single
	// Loader invocation. Returns ErrNoLoader if no Loader was configured.
	GetOrLoad(ctx context.Context, key string, ttl int64) ([]byte, error)

	// Now returns the cache's current time, in nanoseconds,
	// per its configured Clock (or time.Now() by default). Exposed so
	// callers can format replay output against the same time base the
	// cache uses internally.
	Now() int64

	// Close stops every shard's eviction worker. After Close, Set/Get/
	// Replay/PruneAllLogs remain safe to call but no further background
	// eviction or log pruning will occur.
	Close()
}

var _ Cache = (*Router)(nil)
