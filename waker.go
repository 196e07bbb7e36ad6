package ringchan

import (
	"sync"

	"github.com/eapache/queue"
)

// wakeRegistry holds one-shot wake callbacks for receivers suspended on an
// empty ring. Entries live in a token map for O(1) cancellation, with wake
// order kept by a FIFO of tokens; tokens whose entry was cancelled are
// skipped lazily when popped. The mutex guards only the map and the FIFO —
// callbacks are always invoked with the lock released.
type wakeRegistry struct {
	mu      sync.Mutex
	next    uint64
	waiting map[uint64]func()
	order   *queue.Queue
}

func newWakeRegistry() *wakeRegistry {
	return &wakeRegistry{
		waiting: make(map[uint64]func()),
		order:   queue.New(),
	}
}

// register stores wake and returns a token for cancel.
// The caller must re-check the ring after registering: a value published
// between the caller's last poll and this call would otherwise be missed.
func (w *wakeRegistry) register(wake func()) uint64 {
	w.mu.Lock()
	w.next++
	tok := w.next
	w.waiting[tok] = wake
	w.order.Add(tok)
	w.mu.Unlock()
	return tok
}

// Stale FIFO tokens are normally skipped when popped by a notifier, but an
// idle channel never notifies; sweep once cancelled tokens dominate so
// repeated abandoned waits cannot grow the FIFO without bound.
const sweepMin = 32

// cancel removes the entry for tok and reports whether it was still
// registered. A false return means a notifier already consumed the entry;
// the caller then owns that wake and must pass it on if it won't act on it.
func (w *wakeRegistry) cancel(tok uint64) bool {
	w.mu.Lock()
	_, ok := w.waiting[tok]
	delete(w.waiting, tok)
	if w.order.Length() >= sweepMin && w.order.Length() > 2*len(w.waiting) {
		w.sweep()
	}
	w.mu.Unlock()
	return ok
}

// sweep rebuilds the FIFO keeping only still-registered tokens, in order.
// Caller must hold mu.
func (w *wakeRegistry) sweep() {
	kept := queue.New()
	for w.order.Length() > 0 {
		tok := w.order.Remove().(uint64)
		if _, ok := w.waiting[tok]; ok {
			kept.Add(tok)
		}
	}
	w.order = kept
}

// notifyOne wakes the oldest still-registered waiter.
// Reports whether a callback was invoked.
func (w *wakeRegistry) notifyOne() bool {
	var wake func()
	w.mu.Lock()
	for w.order.Length() > 0 {
		tok := w.order.Remove().(uint64)
		if fn, ok := w.waiting[tok]; ok {
			delete(w.waiting, tok)
			wake = fn
			break
		}
	}
	w.mu.Unlock()

	if wake == nil {
		return false
	}
	wake()
	return true
}

// notifyAll wakes every registered waiter and returns how many were woken.
func (w *wakeRegistry) notifyAll() uint64 {
	var wakes []func()
	w.mu.Lock()
	for w.order.Length() > 0 {
		tok := w.order.Remove().(uint64)
		if fn, ok := w.waiting[tok]; ok {
			delete(w.waiting, tok)
			wakes = append(wakes, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range wakes {
		fn()
	}
	return uint64(len(wakes))
}
