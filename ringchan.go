// Package ringchan implements a bounded, non-blocking channel for
// communication between goroutines: multi-producer, multi-consumer,
// backed by a lock-free ring buffer.
//
// Unlike a native Go channel, a send on a full ringchan never blocks and
// never drops: TrySend fails immediately with ErrFull and the value stays
// with the caller. Receivers either poll with TryRecv or suspend
// cooperatively in Recv until a value arrives or the channel closes.
// Closing never discards queued values: the ring drains first, then
// receives report ErrClosed.
package ringchan

import (
	"fmt"
	"sync/atomic"
)

var (
	// ErrFull is returned by TrySend when the buffer holds capacity values.
	ErrFull = fmt.Errorf("ringchan: buffer is full")
	// ErrEmpty is returned by TryRecv when no value is ready.
	ErrEmpty = fmt.Errorf("ringchan: buffer is empty")
	// ErrClosed is returned by TrySend on a closed channel, and by
	// TryRecv/Recv once a closed channel has been drained.
	ErrClosed = fmt.Errorf("ringchan: channel is closed")
)

// Slot protocol by Dmitry Vyukov
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue

type slot[T any] struct {
	seq atomic.Uint64 // sequence number (controls visibility and slot ownership)
	val T             // actual value stored in this slot
}
