package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// evictionWorker drives one shard's expiration and log-pruning sweeps. It
// never polls: it sleeps until the shard's next scheduled expiry, or
// indefinitely if nothing is scheduled, and can be woken early by a SET
// that schedules something sooner. Log pruning runs as a side effect of
// whatever wakes the worker — it has no periodic cadence of its own.
//
// Go has no timed condition-variable wait, so the wakeup signal is a
// buffered channel of size 1 instead of a std::condition_variable_any: a
// non-blocking send from notify() coalesces with any pending wakeup, and
// the run loop selects on it alongside a time.Timer armed to the next
// deadline.
type evictionWorker struct {
	sh           *shard
	logRetention time.Duration

	wake    chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
	started atomic.Bool
	running atomic.Bool
	wg      sync.WaitGroup

	clock Clock
}

func newEvictionWorker(sh *shard, logRetention time.Duration, clock Clock) *evictionWorker {
	return &evictionWorker{
		sh:           sh,
		logRetention: logRetention,
		wake:         make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		clock:        clock,
	}
}

// start launches the worker goroutine. One-shot: any later call, including
// one after stop, is a no-op. Must be called before the shard is exposed to
// any caller of set, since set's notifyNewExpiry path assumes notifyWakeup
// is already wired.
func (w *evictionWorker) start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.running.Store(true)
	w.sh.notifyWakeup = w.notify
	w.wg.Add(1)
	go w.runLoop()
}

// stop signals the worker to exit and waits for it to do so. Idempotent.
func (w *evictionWorker) stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	close(w.stopCh)
	w.wg.Wait()
}

// notify wakes the worker if it is currently sleeping. Non-blocking: if a
// wakeup is already pending, this is a no-op rather than a second signal.
func (w *evictionWorker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *evictionWorker) now() int64 {
	if w.clock != nil {
		return w.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// runLoop is the event-driven sweep: evict everything due, prune logs
// older than the retention horizon, then sleep until the next scheduled
// expiry, or indefinitely if nothing is scheduled — exactly the original
// eviction_thread's wait_until behavior, including its known limitation
// that log pruning never runs on its own while the heap stays empty. Any
// wait, timed or indefinite, can be cut short by notify().
func (w *evictionWorker) runLoop() {
	defer w.wg.Done()
	defer close(w.done)

	for {
		now := w.now()
		w.sh.evictExpired(now)
		w.sh.pruneAllLogs(now - w.logRetention.Nanoseconds())

		next, ok := w.sh.peekNextExpiry()
		if !ok {
			// Nothing scheduled: wait indefinitely rather than poll.
			select {
			case <-w.stopCh:
				return
			case <-w.wake:
				// A SET just scheduled something; loop around to pick it up.
			}
			continue
		}

		d := time.Duration(next-now) * time.Nanosecond
		if d < 0 {
			d = 0
		}
		timer := time.NewTimer(d)

		select {
		case <-w.stopCh:
			timer.Stop()
			return
		case <-w.wake:
			timer.Stop()
			// Loop around immediately: a new, possibly-earlier
			// expiry was just scheduled.
		case <-timer.C:
			// Loop around to re-evaluate: the scheduled expiry is due.
		}
	}
}
