package cache

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brodielang/streamcache/internal/singleflight"
	"github.com/brodielang/streamcache/internal/util"
)

// Router is the default Cache implementation: a fixed number of
// independently-locked shards, each with its own eviction worker, plus a
// singleflight group coalescing concurrent GetOrLoad misses per key.
type Router struct {
	shards []*shard
	workers []*evictionWorker
	numShards int

	logRetention time.Duration
	loader       func(ctx context.Context, key string) (Entry, error)
	loadGroup    singleflight.Group[string, []byte]
}

// New constructs a Router per opt, applying defaults for zero fields, and
// starts every shard's eviction worker. Callers must call Close when done
// to stop the background workers.
func New(opt Options) *Router {
	numShards := opt.NumShards
	if numShards <= 0 {
		numShards = util.ReasonableShardCount()
	}
	logRetention := opt.LogRetention
	if logRetention <= 0 {
		logRetention = DefaultLogRetention
	}
	maxPruneBudget := opt.MaxPruneBudget
	if maxPruneBudget <= 0 {
		maxPruneBudget = DefaultMaxPruneBudget
	}
	metrics := opt.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	r := &Router{
		shards:       make([]*shard, numShards),
		workers:      make([]*evictionWorker, numShards),
		numShards:    numShards,
		logRetention: logRetention,
		loader:       opt.Loader,
	}

	for i := 0; i < numShards; i++ {
		sh := newShard(opt.Clock, maxPruneBudget, metrics)
		w := newEvictionWorker(sh, logRetention, opt.Clock)
		w.start()
		r.shards[i] = sh
		r.workers[i] = w
	}

	return r
}

func (r *Router) shardFor(key string) *shard {
	h := util.Fnv64a(key)
	return r.shards[util.ShardIndex(h, r.numShards)]
}

// Set implements Cache.
func (r *Router) Set(key string, value []byte, ttl *int64) {
	sh := r.shardFor(key)
	entry := Entry{Value: value}
	if ttl != nil {
		exp := sh.now() + *ttl
		entry.Expiration = &exp
	}
	sh.set(key, entry)
}

// Get implements Cache.
func (r *Router) Get(key string) ([]byte, bool) {
	return r.shardFor(key).get(key)
}

// Replay implements Cache.
func (r *Router) Replay(key string) ([]LogRecord, bool) {
	return r.shardFor(key).replay(key)
}

// PruneAllLogs implements Cache, fanning the sweep out across every shard
// concurrently and waiting for all of them to finish.
func (r *Router) PruneAllLogs() {
	var g errgroup.Group
	for _, sh := range r.shards {
		sh := sh
		g.Go(func() error {
			now := sh.now()
			sh.pruneAllLogs(now - r.logRetention.Nanoseconds())
			return nil
		})
	}
	_ = g.Wait()
}

// GetOrLoad implements Cache.
func (r *Router) GetOrLoad(ctx context.Context, key string, ttl int64) ([]byte, error) {
	if v, ok := r.Get(key); ok {
		return v, nil
	}
	if r.loader == nil {
		return nil, ErrNoLoader
	}

	return r.loadGroup.Do(ctx, key, func() ([]byte, error) {
		// Re-check: another goroutine may have populated the key while
		// we were waiting to become the leader.
		if v, ok := r.Get(key); ok {
			return v, nil
		}
		entry, err := r.loader(ctx, key)
		if err != nil {
			return nil, err
		}
		var ttlp *int64
		if ttl > 0 {
			ttlp = &ttl
		}
		r.Set(key, entry.Value, ttlp)
		return entry.Value, nil
	})
}

// Now implements Cache.
func (r *Router) Now() int64 {
	return r.shards[0].now()
}

// Close implements Cache.
func (r *Router) Close() {
	for _, w := range r.workers {
		w.stop()
	}
}
