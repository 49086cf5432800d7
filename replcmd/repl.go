// Package replcmd implements the line-oriented command loop described by
// the cache's CLI surface: one command per line, whitespace-separated
// tokens, SET/GET/REPLAY/EXIT.
package replcmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brodielang/streamcache/cache"
	"github.com/brodielang/streamcache/entrybuilder"
)

const usageSet = "usage: SET <key> <value> [ttlSeconds]"

// tokenize splits a line on whitespace, exactly as the original
// whitespace tokenizer does — no quoting, no escaping.
func tokenize(line string) []string {
	return strings.Fields(line)
}

// Run reads commands from in, one per line, dispatching each to c and
// writing responses to out, until EOF or an EXIT command. It returns nil
// on a clean EOF/EXIT and otherwise the error that terminated the loop.
//
// wallNow is consulted once per REPLAY to anchor that log's cache-clock
// record timestamps to a wall-clock time for display; it defaults to
// time.Now if nil.
func Run(in io.Reader, out io.Writer, c cache.Cache, wallNow func() time.Time) error {
	if wallNow == nil {
		wallNow = time.Now
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		tokens := tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}

		cmd := strings.ToUpper(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "SET":
			dispatchSet(out, c, args)
		case "GET":
			dispatchGet(out, c, args)
		case "REPLAY":
			dispatchReplay(out, c, args, wallNow)
		case "EXIT":
			return nil
		default:
			fmt.Fprintf(out, "Unknown command: %s\n", tokens[0])
		}
	}
}

func dispatchSet(out io.Writer, c cache.Cache, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, usageSet)
		return
	}
	key := args[0]
	value, ttl, ok := entrybuilder.Build(args[1:])
	if !ok {
		fmt.Fprintln(out, usageSet)
		return
	}
	c.Set(key, value, ttl)
}

func dispatchGet(out io.Writer, c cache.Cache, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: GET <key>")
		return
	}
	v, ok := c.Get(args[0])
	if !ok {
		fmt.Fprintln(out, "Key not found.")
		return
	}
	fmt.Fprintf(out, "Value: %s\n", v)
}

func dispatchReplay(out io.Writer, c cache.Cache, args []string, wallNow func() time.Time) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: REPLAY <key>")
		return
	}
	key := args[0]

	// Sample the (cache clock, wall clock) pair together so every record in this
	// call's output is offset from the same reference point.
	monoNow := c.Now()
	wall := wallNow()

	records, ok := c.Replay(key)
	if !ok {
		fmt.Fprintln(out, "Key not found.")
		return
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No recent history for key: %s\n", key)
		return
	}

	for _, r := range records {
		offset := time.Duration(r.Timestamp-monoNow) * time.Nanosecond
		t := wall.Add(offset)
		fmt.Fprintf(out, "[%s] %s\n", t.Format("2006-01-02 15:04:05"), r.Value)
	}
}
