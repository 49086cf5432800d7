// Package entrybuilder turns a tokenized SET command into the arguments
// cache.Cache.Set expects, applying the same validation the REPL's usage
// hint depends on: too few tokens, or a malformed ttl token, both count as
// rejection rather than a best-effort partial parse.
package entrybuilder

import (
	"strconv"
	"time"
)

// Build parses tokens as a SET command's arguments — tokens[0] is the
// value, tokens[1] (optional) is the ttl in seconds. ttl is returned as
// nanoseconds suitable for cache.Cache.Set's ttl parameter: nil when the
// ttl token was omitted (preserve/never-expire semantics), non-nil
// otherwise, including when the ttl token is "0" (expire immediately).
//
// ok is false if tokens has fewer than one element, or the ttl token is
// present but not a non-negative integer — mirroring the original
// implementation's rejection of negative or non-numeric ttl tokens.
//
// The caller is expected to have already stripped the command name and
// key off the front of the line's tokens; Build only sees <value>
// [ttlSeconds].
func Build(tokens []string) (value []byte, ttl *int64, ok bool) {
	if len(tokens) < 1 {
		return nil, nil, false
	}

	value = []byte(tokens[0])

	if len(tokens) >= 2 {
		ttlSeconds, err := strconv.Atoi(tokens[1])
		if err != nil || ttlSeconds < 0 {
			return nil, nil, false
		}
		ns := int64(ttlSeconds) * int64(time.Second)
		ttl = &ns
	}

	return value, ttl, true
}
