// Package cache provides a sharded, in-memory key/value cache with
// per-entry TTL, a bounded per-key history log, and event-driven background
// eviction.
//
// Design
//
//   - Concurrency: the cache is split into shards, each guarded by its own
//     sync.RWMutex. Keys are routed to a shard by a stable hash, which keeps
//     cross-key contention down while allowing many concurrent readers
//     within a shard.
//
//   - Expiration: each shard keeps a min-heap of (expiration, key) events.
//     Updating a key's TTL does not remove its old heap entry — stale
//     events are discarded lazily by the eviction worker when it pops them
//     and finds they no longer match the key's current expiration. This is
//     cheaper than a decrease-key heap and is a deliberate trade-off.
//
//   - Eviction: every shard owns exactly one background worker that sleeps
//     until the earliest scheduled expiry, or indefinitely if nothing is
//     scheduled, and is woken early by a SET that schedules something
//     sooner. Each time it wakes it evicts everything due and trims log
//     retention. The worker never polls: if the heap stays empty, log
//     pruning simply doesn't run until the next SET with a TTL wakes it — the same
//     trade-off the cache's original design makes.
//
//   - Replay: every SET appends to the key's history log. REPLAY returns the
//     slice of that log whose timestamps fall within the key's *original*
//     TTL window, anchored to now — so a key with a 10-second TTL always
//     replays the last 10 seconds of writes, even after the key itself has
//     expired but before the worker has swept it away.
//
//   - Metrics: Options.Metrics receives Hit/Miss/EvictionBatch/HeapSize/
//     NotifyEarlierExpiry signals. By default NoopMetrics is used; see
//     metrics/prom for a Prometheus adapter.
//
//   - GetOrLoad: on a miss, coalesces concurrent loads for the same key via
//     singleflight when Options.Loader is configured.
//
// Basic usage
//
//	c := cache.New(cache.Options{NumShards: 8})
//	defer c.Close()
//
//	ttl := int64(10 * time.Second)
//	c.Set("session:42", []byte("data"), &ttl)
//
//	if v, ok := c.Get("session:42"); ok {
//	    _ = v
//	}
//
//	records, ok := c.Replay("session:42")
package cache
