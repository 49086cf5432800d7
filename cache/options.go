package cache

import (
	"context"
	"time"
)

// Clock provides time in UnixNano; useful for deterministic tests. All TTL
// and replay-window arithmetic uses this source.
type Clock interface{ NowUnixNano() int64 }

// Defaults applied by New when the corresponding Options field is zero.
const (
	// DefaultLogRetention is the fixed retention horizon for per-key
	// history logs: records older than this are pruned regardless of
	// the key's own TTL.
	DefaultLogRetention = time.Hour
	// DefaultMaxPruneBudget bounds how long a single pruneAllLogs sweep
	// may hold a shard's exclusive lock before yielding to the next
	// worker cycle.
	DefaultMaxPruneBudget = 5 * time.Millisecond
)

// Options configures a Cache. Zero values are safe; defaults are applied in
// New.
type Options struct {
	// NumShards is the number of shards to partition the key space
	// across. Fixed at construction time — the router never rehashes.
	// <= 0 => util.ReasonableShardCount(), sized off GOMAXPROCS.
	NumShards int

	// LogRetention bounds how long a log record survives regardless of
	// its key's TTL. <= 0 => DefaultLogRetention.
	LogRetention time.Duration

	// MaxPruneBudget bounds the soft time budget of one log-pruning
	// sweep. <= 0 => DefaultMaxPruneBudget.
	MaxPruneBudget time.Duration

	// Metrics receives Hit/Miss/eviction/heap-size observability
	// signals. nil => NoopMetrics.
	Metrics Metrics

	// Clock overrides the time source (for tests). nil => time.Now().
	Clock Clock

	// Loader fetches a value on a GetOrLoad miss. Concurrent loads for
	// the same key are coalesced via singleflight. nil disables
	// GetOrLoad (it returns ErrNoLoader).
	Loader func(ctx context.Context, key string) (Entry, error)
}
