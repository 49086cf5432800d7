//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Set/Get/Replay semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: key/value lengths are capped to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants checked).
func FuzzCache_SetGetReplay(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New(Options{NumShards: 4})
		t.Cleanup(c.Close)

		c.Set(k, []byte(v), nil)
		got, ok := c.Get(k)
		if !ok || string(got) != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		records, ok := c.Replay(k)
		if !ok {
			t.Fatalf("key must be present in the index after Set")
		}
		if len(records) == 0 || string(records[len(records)-1].Value) != v {
			t.Fatalf("replay must contain the most recent write, got %+v", records)
		}
	})
}
