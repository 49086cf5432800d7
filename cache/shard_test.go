package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

func newTestShard(clk Clock) *shard {
	return newShard(clk, DefaultMaxPruneBudget, NoopMetrics{})
}

// Uses a fake clock to avoid timing flakiness. Ensures per-entry TTL is
// respected, and that expiry is lazy: get never mutates the index itself.
func TestShard_TTL_FakeClock(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp := clk.t + int64(100*time.Millisecond)
	s.set("x", Entry{Value: []byte("v"), Expiration: &exp})

	if _, ok := s.get("x"); !ok {
		t.Fatal("fresh miss")
	}
	clk.add(200 * time.Millisecond)
	if _, ok := s.get("x"); ok {
		t.Fatal("expired hit")
	}
	// Still present in the index — get never evicts.
	if _, ok := s.index["x"]; !ok {
		t.Fatal("get must not delete the expired entry; that is evictExpired's job")
	}
}

// Updating an existing TTL'd key without a new expiration preserves the
// original deadline.
func TestShard_Set_PreservesExpirationOnNoTTLUpdate(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp := clk.t + int64(10*time.Second)
	s.set("k", Entry{Value: []byte("v1"), Expiration: &exp})
	s.set("k", Entry{Value: []byte("v2")}) // no Expiration => preserve

	entry := s.index["k"]
	if entry.Expiration == nil || *entry.Expiration != exp {
		t.Fatalf("expiration must be preserved, got %v want %d", entry.Expiration, exp)
	}
	if string(entry.Value) != "v2" {
		t.Fatalf("value must still update, got %q", entry.Value)
	}

	clk.add(11 * time.Second)
	if _, ok := s.get("k"); ok {
		t.Fatal("must expire at the original deadline")
	}
}

// Replay returns exactly the log records within [now-originalTTL, now],
// where originalTTL is measured from the most recent SET, not the
// remaining TTL at replay time.
func TestShard_Replay_Window(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp := clk.t + int64(10*time.Second)
	s.set("k", Entry{Value: []byte("a"), Expiration: &exp}) // t=0

	clk.add(3 * time.Second)
	s.set("k", Entry{Value: []byte("b"), Expiration: &exp}) // t=3s

	clk.add(4 * time.Second) // now t=7s; originalTTL = 10s-3s = 7s, window is [now-7s, now] = [0s, 7s]
	records, ok := s.replay("k")
	if !ok {
		t.Fatal("key must be present")
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records in window, got %d", len(records))
	}
	if string(records[0].Value) != "a" || string(records[1].Value) != "b" {
		t.Fatalf("unexpected record order/values: %+v", records)
	}
}

// A SET with a different value for the same key leaves exactly two log
// records — the log is append-only per write, not per distinct value.
func TestShard_Replay_TwoWritesTwoRecords(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	s.set("k", Entry{Value: []byte("a")})
	s.set("k", Entry{Value: []byte("b")})

	records, ok := s.replay("k")
	if !ok || len(records) != 2 {
		t.Fatalf("want exactly 2 records, got %d (ok=%v)", len(records), ok)
	}
}

// evictExpired discards stale heap entries: an old (expiration, key) event
// superseded by a later SET must not delete the key or its refreshed log.
func TestShard_EvictExpired_DiscardsStaleHeapEntries(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	shortExp := clk.t + int64(time.Second)
	s.set("k", Entry{Value: []byte("v1"), Expiration: &shortExp}) // schedules t=1s

	longExp := clk.t + int64(time.Hour)
	s.set("k", Entry{Value: []byte("v2"), Expiration: &longExp}) // schedules t=1h, stale 1s entry remains in heap

	clk.add(2 * time.Second)
	s.evictExpired(clk.t)

	if _, ok := s.get("k"); !ok {
		t.Fatal("key must survive: the popped heap event was stale")
	}
	if len(s.heap) != 1 {
		t.Fatalf("only the stale event should have been popped, heap len=%d", len(s.heap))
	}
}

// evictExpired removes a key's log along with the key itself.
func TestShard_EvictExpired_RemovesLog(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp := clk.t + int64(time.Second)
	s.set("k", Entry{Value: []byte("v"), Expiration: &exp})

	clk.add(2 * time.Second)
	s.evictExpired(clk.t)

	if _, ok := s.index["k"]; ok {
		t.Fatal("key must be gone from the index")
	}
	if _, ok := s.logs["k"]; ok {
		t.Fatal("log must be gone alongside the key")
	}
}

// peekNextExpiry is monotonically non-decreasing in the absence of new
// SETs scheduling an earlier deadline.
func TestShard_PeekNextExpiry_NonDecreasing(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp1 := clk.t + int64(5*time.Second)
	s.set("a", Entry{Value: []byte("1"), Expiration: &exp1})
	first, ok := s.peekNextExpiry()
	if !ok {
		t.Fatal("expected a scheduled expiry")
	}

	clk.add(time.Second)
	s.evictExpired(clk.t) // nothing due yet
	second, ok := s.peekNextExpiry()
	if !ok || second < first {
		t.Fatalf("peekNextExpiry must not decrease: first=%d second=%d", first, second)
	}
}

// pruneAllLogs drops log records older than the retention cutoff, keeping
// the rest.
func TestShard_PruneAllLogs(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	s.set("k", Entry{Value: []byte("old")})
	clk.add(time.Hour)
	s.set("k", Entry{Value: []byte("new")})

	cutoff := clk.t - int64(time.Minute)
	s.pruneAllLogs(cutoff)

	records := s.logs["k"]
	if len(records) != 1 || string(records[0].Value) != "new" {
		t.Fatalf("want only the recent record to survive pruning, got %+v", records)
	}
}

// ttl = 0 makes an entry immediately eligible for eviction.
func TestShard_ZeroTTL_ImmediatelyExpired(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s := newTestShard(clk)

	exp := clk.t
	s.set("k", Entry{Value: []byte("v"), Expiration: &exp})

	if _, ok := s.get("k"); ok {
		t.Fatal("ttl=0 entry must already read as expired")
	}
}
