package ringchan

import (
	"context"
	"sync/atomic"
)

// Stats is a point-in-time snapshot of channel activity.
type Stats struct {
	Sends            uint64
	FullRejections   uint64
	ClosedRejections uint64
	Receives         uint64
	EmptyPolls       uint64
	Wakes            uint64

	LiveSenders   int64
	LiveReceivers int64
}

// channel is the shared core behind Sender and Receiver handles.
// All handles reference the same instance; it lives as long as any of them.
type channel[T any] struct {
	ring   *ring[T]
	wakers *wakeRegistry

	closed    atomic.Bool
	senders   atomic.Int64
	receivers atomic.Int64

	sends            atomic.Uint64
	fullRejections   atomic.Uint64
	closedRejections atomic.Uint64
	receives         atomic.Uint64
	emptyPolls       atomic.Uint64
	wakes            atomic.Uint64
}

// New creates a bounded channel with the given capacity and returns the
// initial Sender/Receiver handle pair. Capacity is fixed for the channel's
// lifetime. Panics if capacity < 1.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 1 {
		panic("ringchan: capacity must be >= 1")
	}

	ch := &channel[T]{
		ring:   newRing[T](uint64(capacity)),
		wakers: newWakeRegistry(),
	}
	ch.senders.Store(1)
	ch.receivers.Store(1)

	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

func (c *channel[T]) trySend(v T) error {
	if c.closed.Load() {
		c.closedRejections.Add(1)
		return ErrClosed
	}
	if !c.ring.tryPush(v) {
		c.fullRejections.Add(1)
		return ErrFull
	}
	c.sends.Add(1)

	// One new value can satisfy at most one waiter.
	if c.wakers.notifyOne() {
		c.wakes.Add(1)
	}
	return nil
}

func (c *channel[T]) tryRecv() (T, error) {
	v, ok := c.ring.tryPop()
	if ok {
		c.receives.Add(1)
		return v, nil
	}

	var zero T
	if c.closed.Load() {
		// A publish may have landed between the failed pop and the closed
		// check; drain-then-close means it must still be delivered.
		if v, ok := c.ring.tryPop(); ok {
			c.receives.Add(1)
			return v, nil
		}
		return zero, ErrClosed
	}
	c.emptyPolls.Add(1)
	return zero, ErrEmpty
}

// recv suspends cooperatively until a value arrives, the channel is closed
// and drained, or ctx is done. Registration happens after observing Empty
// and is followed by a re-check, so a concurrent publish can never be missed.
func (c *channel[T]) recv(ctx context.Context) (T, error) {
	for {
		v, err := c.tryRecv()
		if err != ErrEmpty {
			return v, err
		}

		ready := make(chan struct{}, 1)
		tok := c.wakers.register(func() {
			select {
			case ready <- struct{}{}:
			default:
			}
		})

		// Re-check: a value published before registration completed would
		// otherwise leave us suspended forever.
		v, err = c.tryRecv()
		if err != ErrEmpty {
			c.cancelWake(tok)
			return v, err
		}

		select {
		case <-ready:
			// Woken: loop and race other receivers for the value.
		case <-ctx.Done():
			c.cancelWake(tok)
			var zero T
			return zero, ctx.Err()
		}
	}
}

// cancelWake removes a registration. If a notifier already consumed the
// entry, that wake now belongs to the abandoning waiter and is passed on to
// a peer so a publish never loses its wakeup.
func (c *channel[T]) cancelWake(tok uint64) {
	if !c.wakers.cancel(tok) {
		c.forwardWake()
	}
}

func (c *channel[T]) forwardWake() {
	if c.wakers.notifyOne() {
		c.wakes.Add(1)
	}
}

// close transitions the channel to closed. One-way and idempotent.
// Queued values stay receivable; all suspended receivers are woken so they
// re-observe the terminal state.
func (c *channel[T]) close() {
	if c.closed.CompareAndSwap(false, true) {
		c.wakes.Add(c.wakers.notifyAll())
	}
}

func (c *channel[T]) stats() Stats {
	return Stats{
		Sends:            c.sends.Load(),
		FullRejections:   c.fullRejections.Load(),
		ClosedRejections: c.closedRejections.Load(),
		Receives:         c.receives.Load(),
		EmptyPolls:       c.emptyPolls.Load(),
		Wakes:            c.wakes.Load(),
		LiveSenders:      c.senders.Load(),
		LiveReceivers:    c.receivers.Load(),
	}
}
