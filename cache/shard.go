package cache

import (
	"container/heap"
	"sync"
	"time"

	"github.com/brodielang/streamcache/internal/util"
)

// shard is a self-contained mini-cache: an index, a min-heap of scheduled
// expirations, per-key history logs, and the RWMutex that guards all three.
// A shard never evicts on its own — that is the eviction worker's job; the
// shard only exposes total, lock-aware operations for it to call.
type shard struct {
	mu    sync.RWMutex
	index map[string]Entry
	heap  expiryHeap
	logs  map[string][]LogRecord

	// notifyWakeup is assigned once by the eviction worker's start() and
	// read thereafter without a lock (publication happens-before the
	// worker goroutine launches). Safe to call with no lock held.
	notifyWakeup func()

	clock          Clock
	maxPruneBudget time.Duration
	metrics        Metrics

	// Hot counters, kept off the hot fields' cache line to avoid false
	// sharing between shards and between readers/writers of the same
	// shard.
	_                        util.CacheLinePad
	hits                     util.PaddedAtomicInt64
	misses                   util.PaddedAtomicInt64
	evictionsTotal           util.PaddedAtomicInt64
	evictionBatches          util.PaddedAtomicInt64
	heapSizeGauge            util.PaddedAtomicInt64
	notifyEarlierExpiryCount util.PaddedAtomicInt64
}

func newShard(clock Clock, maxPruneBudget time.Duration, metrics Metrics) *shard {
	return &shard{
		index:          make(map[string]Entry),
		logs:           make(map[string][]LogRecord),
		clock:          clock,
		maxPruneBudget: maxPruneBudget,
		metrics:        metrics,
	}
}

func (s *shard) now() int64 {
	if s.clock != nil {
		return s.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// set installs entry at key, scheduling an eviction event if it carries an
// expiration, and appends a log record. The wakeup notifier (if any) is
// called only after the lock is released, so a SET never blocks on the
// eviction worker.
func (s *shard) set(key string, entry Entry) {
	now := s.now()

	s.mu.Lock()
	if entry.Expiration == nil {
		if existing, ok := s.index[key]; ok && existing.Expiration != nil {
			// Pure value-update on an existing TTL'd key: preserve the
			// original deadline instead of resetting it.
			entry.Expiration = existing.Expiration
		}
	}
	entry.TimeSet = now
	s.index[key] = entry

	var notifyAt *int64
	if entry.Expiration != nil {
		t := *entry.Expiration
		heap.Push(&s.heap, expiryEvent{at: t, key: key})
		notifyAt = &t
	}

	value := append([]byte(nil), entry.Value...)
	s.logs[key] = append(s.logs[key], LogRecord{Timestamp: now, Value: value})
	heapLen := len(s.heap)
	s.mu.Unlock()

	s.heapSizeGauge.Store(int64(heapLen))
	s.metrics.HeapSize(heapLen)

	if notifyAt != nil {
		s.notifyNewExpiry(*notifyAt)
	}
}

// get returns the value for key if present and unexpired. An expired entry
// is reported as a miss without mutating anything — cleanup is solely the
// eviction worker's responsibility.
func (s *shard) get(key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.index[key]
	s.mu.RUnlock()

	if !ok {
		s.misses.Add(1)
		s.metrics.Miss()
		return nil, false
	}
	if entry.Expiration != nil && *entry.Expiration <= s.now() {
		s.misses.Add(1)
		s.metrics.Miss()
		return nil, false
	}

	s.hits.Add(1)
	s.metrics.Hit()
	return entry.Value, true
}

// replay returns the subset of key's history log whose timestamps fall
// within [now-originalTTL, now], where originalTTL is the key's TTL as of
// its most recent SET (not its remaining TTL). ok is false if key is
// absent from the index.
func (s *shard) replay(key string) (records []LogRecord, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, present := s.index[key]
	if !present {
		return nil, false
	}

	var cutoff int64
	if entry.Expiration != nil {
		originalTTL := *entry.Expiration - entry.TimeSet
		cutoff = s.now() - originalTTL
	}
	// else: cutoff stays the zero timestamp — return the whole log.

	out := make([]LogRecord, 0, len(s.logs[key]))
	for _, r := range s.logs[key] {
		if r.Timestamp >= cutoff {
			out = append(out, r)
		}
	}
	return out, true
}

// peekNextExpiry returns the timestamp at the top of the expiry heap, or
// false if nothing is scheduled.
func (s *shard) peekNextExpiry() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.heap) == 0 {
		return 0, false
	}
	return s.heap[0].at, true
}

// evictExpired pops and removes every heap event due by now, discarding
// stale events (ones that no longer match their key's current expiration)
// along the way. Log deletion for evicted keys happens after the exclusive
// lock is released, to bound how long evictExpired holds it.
func (s *shard) evictExpired(now int64) {
	var evicted []string

	s.mu.Lock()
	for len(s.heap) > 0 && s.heap[0].at <= now {
		ev := heap.Pop(&s.heap).(expiryEvent)
		entry, ok := s.index[ev.key]
		if ok && entry.Expiration != nil && *entry.Expiration == ev.at {
			delete(s.index, ev.key)
			evicted = append(evicted, ev.key)
		}
		// Otherwise ev is stale (superseded by a later SET, or the key
		// was removed): discard it silently.
	}
	heapLen := len(s.heap)
	s.mu.Unlock()

	if len(evicted) > 0 {
		s.mu.Lock()
		for _, k := range evicted {
			delete(s.logs, k)
		}
		s.mu.Unlock()

		s.evictionsTotal.Add(int64(len(evicted)))
		s.evictionBatches.Add(1)
		s.metrics.EvictionBatch(len(evicted))
	}

	s.heapSizeGauge.Store(int64(heapLen))
	s.metrics.HeapSize(heapLen)
}

// pruneAllLogs trims every key's log, dropping records older than cutoff
// from the front. It aborts the sweep once its soft time budget is spent,
// relying on the next worker cycle to resume — correctness never depends
// on completing in one call.
func (s *shard) pruneAllLogs(cutoff int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	budget := s.maxPruneBudget
	if budget <= 0 {
		budget = DefaultMaxPruneBudget
	}

	for key, log := range s.logs {
		i := 0
		for i < len(log) && log[i].Timestamp < cutoff {
			i++
		}
		if i > 0 {
			s.logs[key] = log[i:]
		}
		if time.Since(start) > budget {
			break
		}
	}
}

// notifyNewExpiry wakes the eviction worker if t is (or ties) the current
// earliest scheduled expiry. By the time this runs, t is already in the
// heap, so the heap top can never be later than t; "earlier" means t is
// the new top, i.e. this SET is the one the worker now needs to know
// about. Must never be called while holding the exclusive lock — it takes
// the shared lock itself, and the lock-release-then-notify ordering in set
// depends on that to avoid a self-deadlock.
func (s *shard) notifyNewExpiry(t int64) {
	s.mu.RLock()
	var earlier bool
	if len(s.heap) == 0 {
		earlier = true
	} else {
		earlier = t <= s.heap[0].at
	}
	s.mu.RUnlock()

	if !earlier {
		return
	}

	s.notifyEarlierExpiryCount.Add(1)
	s.metrics.NotifyEarlierExpiry()
	if s.notifyWakeup != nil {
		s.notifyWakeup()
	}
}
