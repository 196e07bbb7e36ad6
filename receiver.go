package ringchan

import (
	"context"
	"sync"
	"sync/atomic"
)

// Receiver is a consumer handle. Handles are cheap; Clone them freely to
// share one channel between many consumer goroutines. Methods on one
// Receiver are safe for concurrent use.
type Receiver[T any] struct {
	ch     *channel[T]
	closed atomic.Bool
}

// TryRecv removes and returns the oldest queued value. It never blocks:
// ErrEmpty means nothing is ready right now, ErrClosed means the channel is
// closed and fully drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	return r.ch.tryRecv()
}

// Recv returns the oldest queued value, suspending cooperatively while the
// channel is empty. It returns ErrClosed once the channel is closed and
// drained, or ctx.Err() if ctx is done first. Abandoning a Recv via ctx
// never loses a concurrently delivered value: it stays queued for the next
// receiver.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	if r.closed.Load() {
		var zero T
		return zero, ErrClosed
	}
	return r.ch.recv(ctx)
}

// RegisterWake is the suspend-point contract for external schedulers that
// drive their own task suspension instead of using Recv. It registers a
// one-shot callback invoked (never under an internal lock) when a value may
// have become receivable or the channel has closed. To rule out a missed
// wakeup the caller must poll TryRecv after registering and suspend only on
// ErrEmpty. The returned cancel is idempotent and safe against a concurrent
// wake: if the wake already fired it is handed on to another waiter.
func (r *Receiver[T]) RegisterWake(wake func()) (cancel func()) {
	tok := r.ch.wakers.register(wake)
	var once sync.Once
	return func() {
		once.Do(func() { r.ch.cancelWake(tok) })
	}
}

// Clone returns a new Receiver sharing the same channel.
// Panics if called on a closed handle.
func (r *Receiver[T]) Clone() *Receiver[T] {
	if r.closed.Load() {
		panic("ringchan: Clone of closed Receiver")
	}
	r.ch.receivers.Add(1)
	return &Receiver[T]{ch: r.ch}
}

// Close releases this handle. Closing the last Receiver does not close the
// channel: senders keep filling the buffer until it is full, which callers
// can detect through Stats. Safe to call more than once.
func (r *Receiver[T]) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.ch.receivers.Add(-1)
	}
}

// Closed reports whether the channel (not just this handle) is closed.
func (r *Receiver[T]) Closed() bool { return r.ch.closed.Load() }

// Len returns the approximate number of queued values.
func (r *Receiver[T]) Len() int { return int(r.ch.ring.length()) }

// Cap returns the fixed channel capacity.
func (r *Receiver[T]) Cap() int { return int(r.ch.ring.capacity) }

// Stats returns a snapshot of the shared channel's activity counters.
func (r *Receiver[T]) Stats() Stats { return r.ch.stats() }
