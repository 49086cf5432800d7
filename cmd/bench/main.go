// Command bench runs a synthetic SET/GET/REPLAY workload against the cache
// and exposes a Prometheus metrics endpoint and an optional pprof endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brodielang/streamcache/cache"
	pmet "github.com/brodielang/streamcache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		shards = flag.Int("shards", 0, "number of shards (0=auto)")
		ttl    = flag.Duration("ttl", 30*time.Second, "ttl applied to every write")

		workers   = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration  = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct   = flag.Int("reads", 70, "read percentage [0..100]")
		replayPct = flag.Int("replays", 10, "replay percentage of the non-read traffic [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 100_000, "preload entries")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "streamcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	c := cache.New(cache.Options{
		NumShards: *shards,
		Metrics:   metrics,
	})
	defer c.Close()

	ttlNanos := int64(*ttl)

	// ---- Preload ----
	for i := 0; i < *preload; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Set(k, []byte("v"+strconv.Itoa(i)), &ttlNanos)
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	replayPctVal := *replayPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, replays, hits, misses, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				roll := int(localR.Int31n(100))
				switch {
				case roll < readPctVal:
					atomic.AddUint64(&reads, 1)
					if _, ok := c.Get(keyByZipf()); ok {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				case roll < readPctVal+(100-readPctVal)*replayPctVal/100:
					atomic.AddUint64(&replays, 1)
					_, _ = c.Replay(keyByZipf())
				default:
					atomic.AddUint64(&writes, 1)
					k := keyByZipf()
					c.Set(k, []byte("v"+strconv.Itoa(localR.Int())), &ttlNanos)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	replaysN := atomic.LoadUint64(&replays)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("shards=%d ttl=%v workers=%d keys=%d dur=%v seed=%d\n",
		*shards, *ttl, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  replays=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN, replaysN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)
}
