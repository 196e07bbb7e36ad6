package ringchan

import (
	"runtime"
	"sync/atomic"
)

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

// ring is a bounded MPMC store. Each slot carries its own sequence tag;
// ownership of a slot transfers between producer and consumer roles only
// through that tag, so no lock is ever held across a push or pop.
//
// Sequences advance by two per hand-off phase: a slot is free for position
// pos at seq == 2*pos, published at seq == 2*pos+1, and freed for the next
// generation at seq == 2*(pos+capacity). The odd published value can never
// collide with the next free value, which matters at capacity 1 where
// pos+1 and the next producer position coincide.
type ring[T any] struct {
	// Optional padding to avoid false sharing between hot fields.
	_        [64]byte
	capacity uint64
	slots    []slot[T]
	_        [64]byte
	enqueue  atomic.Uint64 // logical tail index (producers)
	_        [64]byte
	dequeue  atomic.Uint64 // logical head index (consumers)
	_        [64]byte
}

// newRing creates a bounded MPMC store of the given capacity (>= 1).
// Unlike a power-of-two mask, indexing is pos % capacity, so any size works.
func newRing[T any](capacity uint64) *ring[T] {
	if capacity == 0 {
		panic("ringchan: capacity must be >= 1")
	}

	slots := make([]slot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		// initial sequence for each slot marks it free for its index
		slots[i].seq.Store(2 * i)
	}

	return &ring[T]{
		capacity: capacity,
		slots:    slots,
	}
}

// tryPush stores an element into the ring.
// Returns false if the ring is full (backpressure path).
// Safe to call concurrently from many producer goroutines.
func (r *ring[T]) tryPush(v T) bool {
	var spins uint32
	for {
		pos := r.enqueue.Load()
		s := &r.slots[pos%r.capacity]

		seq := s.seq.Load()
		diff := int64(seq) - int64(2*pos)

		if diff == 0 {
			// Slot is free for this position, try to reserve it.
			if r.enqueue.CompareAndSwap(pos, pos+1) {
				// We won this slot.
				s.val = v
				// Publish the value: seq = 2*pos+1
				s.seq.Store(2*pos + 1)
				return true
			}
			spins++
			if spins%goschedEvery == 0 {
				runtime.Gosched()
			}
		} else if diff < 0 {
			// diff < 0 => consumer has not yet freed this slot.
			// Ring is full for this producer.
			return false
		} else {
			// diff > 0 => this slot still belongs to a previous cycle.
			// Just retry with a new pos.
			spins++
			if spins%goschedEvery == 0 {
				runtime.Gosched()
			}
		}
	}
}

// tryPop removes the oldest element from the ring.
// Returns (zero, false) if the ring is empty.
// Safe to call concurrently from many consumer goroutines.
func (r *ring[T]) tryPop() (T, bool) {
	var zero T
	var spins uint32
	for {
		pos := r.dequeue.Load()
		s := &r.slots[pos%r.capacity]

		seq := s.seq.Load()
		diff := int64(seq) - int64(2*pos+1)

		if diff == 0 {
			// Element is ready for this position, try to claim it.
			if !r.dequeue.CompareAndSwap(pos, pos+1) {
				// Another consumer won this slot, retry.
				spins++
				if spins%goschedEvery == 0 {
					runtime.Gosched()
				}
				continue
			}

			// We successfully claimed this slot.
			v := s.val
			// Drop the reference so consumed values don't pin memory.
			s.val = zero
			// Free the slot for the next cycle:
			// next time this physical slot will be used at pos+capacity.
			s.seq.Store(2 * (pos + r.capacity))

			return v, true
		}

		if diff < 0 {
			// Ring is logically empty (head is ahead of producers).
			return zero, false
		}

		// diff > 0 => producer is not done yet or intermediate state.
		// Yield to let producers/other consumers make progress.
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// length returns the current occupied-slot count, clamped to [0, capacity].
// The two position loads are not a single snapshot, so the result is a
// best-effort estimate under concurrency.
func (r *ring[T]) length() uint64 {
	e := r.enqueue.Load()
	d := r.dequeue.Load()
	if e <= d {
		return 0
	}
	n := e - d
	if n > r.capacity {
		return r.capacity
	}
	return n
}
