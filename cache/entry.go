package cache

// Entry is the value stored for a key, plus the metadata needed for TTL
// expiration and replay windowing.
//
// All timestamps are nanoseconds from the cache's clock: Options.Clock, or
// time.Now().UnixNano() by default. The default is a wall-clock reading in
// Unix nanoseconds and is not monotonic: a step in the system clock shifts
// TTL deadlines and replay windows with it.
type Entry struct {
	// Value is an opaque byte string; the cache never interprets it.
	Value []byte

	// Expiration is the absolute deadline at which this entry
	// becomes eligible for eviction. Nil means the entry never expires
	// by TTL.
	Expiration *int64

	// TimeSet is the timestamp of the most recent SET for this
	// key. It is assigned by Shard.set and any caller-provided value is
	// overwritten.
	TimeSet int64
}

// LogRecord is one element of a key's append-only history log.
type LogRecord struct {
	// Timestamp is the cache-clock time the record was written.
	Timestamp int64
	// Value is the byte string SET at that time.
	Value []byte
}
