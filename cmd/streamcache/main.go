// Command streamcache runs an interactive SET/GET/REPLAY/EXIT REPL against
// an in-process cache.Router.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brodielang/streamcache/cache"
	"github.com/brodielang/streamcache/replcmd"
)

var (
	numShards      int
	logRetention   time.Duration
	maxPruneBudget time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "streamcache",
	Short: "In-memory sharded TTL cache with replayable per-key history",
	Long: `streamcache runs an interactive REPL over a sharded, TTL-expiring
key/value cache. Each key's write history is kept until the key is evicted
or a record ages past the log-retention horizon; REPLAY shows the records
within a window as long as the key's own TTL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cache.New(cache.Options{
			NumShards:      numShards,
			LogRetention:   logRetention,
			MaxPruneBudget: maxPruneBudget,
		})
		defer c.Close()

		return replcmd.Run(os.Stdin, os.Stdout, c, nil)
	},
}

func init() {
	rootCmd.Flags().IntVar(&numShards, "shards", 0,
		"number of cache shards (0 = auto, sized off GOMAXPROCS)")
	rootCmd.Flags().DurationVar(&logRetention, "log-retention", cache.DefaultLogRetention,
		"maximum age of a retained per-key log record, regardless of its key's TTL")
	rootCmd.Flags().DurationVar(&maxPruneBudget, "prune-budget", cache.DefaultMaxPruneBudget,
		"soft time budget for a single log-pruning sweep")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
