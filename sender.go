package ringchan

import "sync/atomic"

// Sender is a producer handle. Handles are cheap; Clone them freely to share
// one channel between many producer goroutines. Methods on one Sender are
// safe for concurrent use.
type Sender[T any] struct {
	ch     *channel[T]
	closed atomic.Bool
}

// TrySend stores v into the channel. It never blocks: on ErrFull or
// ErrClosed the value stays with the caller, who decides whether to retry,
// redirect or drop it.
func (s *Sender[T]) TrySend(v T) error {
	if s.closed.Load() {
		// Counted with channel-closed rejections: Stats tracks every send
		// that failed with ErrClosed, whichever side was closed.
		s.ch.closedRejections.Add(1)
		return ErrClosed
	}
	return s.ch.trySend(v)
}

// Clone returns a new Sender sharing the same channel.
// Panics if called on a closed handle.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.closed.Load() {
		panic("ringchan: Clone of closed Sender")
	}
	s.ch.senders.Add(1)
	return &Sender[T]{ch: s.ch}
}

// Close releases this handle. When the last live Sender is closed the
// channel closes: queued values remain receivable, further sends fail with
// ErrClosed. Safe to call more than once.
func (s *Sender[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.ch.senders.Add(-1) == 0 {
		s.ch.close()
	}
}

// Closed reports whether the channel (not just this handle) is closed.
func (s *Sender[T]) Closed() bool { return s.ch.closed.Load() }

// Len returns the approximate number of queued values.
func (s *Sender[T]) Len() int { return int(s.ch.ring.length()) }

// Cap returns the fixed channel capacity.
func (s *Sender[T]) Cap() int { return int(s.ch.ring.capacity) }

// Stats returns a snapshot of the shared channel's activity counters.
func (s *Sender[T]) Stats() Stats { return s.ch.stats() }
