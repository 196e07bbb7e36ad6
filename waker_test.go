package ringchan

import "testing"

func TestWakeRegistryNotifyOneFIFO(t *testing.T) {
	w := newWakeRegistry()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		w.register(func() { order = append(order, i) })
	}

	for i := 0; i < 3; i++ {
		if !w.notifyOne() {
			t.Fatalf("notifyOne returned false with waiters registered (i=%d)", i)
		}
	}
	if w.notifyOne() {
		t.Fatalf("notifyOne returned true on empty registry")
	}

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected wake order [0 1 2], got %v", order)
	}
}

func TestWakeRegistryCancel(t *testing.T) {
	w := newWakeRegistry()

	fired := false
	tok := w.register(func() { fired = true })

	if !w.cancel(tok) {
		t.Fatalf("cancel of a registered entry returned false")
	}
	if w.cancel(tok) {
		t.Fatalf("second cancel of the same entry returned true")
	}
	if w.notifyOne() {
		t.Fatalf("notifyOne woke a cancelled waiter")
	}
	if fired {
		t.Fatalf("cancelled callback was invoked")
	}
}

// A waiter consumed by a notifier cannot be cancelled afterwards; the caller
// learns it now owns that wake.
func TestWakeRegistryCancelAfterNotify(t *testing.T) {
	w := newWakeRegistry()

	fired := 0
	tok := w.register(func() { fired++ })

	if !w.notifyOne() {
		t.Fatalf("notifyOne returned false with a waiter registered")
	}
	if w.cancel(tok) {
		t.Fatalf("cancel returned true for an already-consumed entry")
	}
	if fired != 1 {
		t.Fatalf("callback invoked %d times (expected 1)", fired)
	}
}

// Abandoned waits on an idle registry (nothing ever notifies, so stale
// tokens are never popped lazily) must not accumulate in the FIFO.
func TestWakeRegistryCancelDoesNotLeak(t *testing.T) {
	w := newWakeRegistry()

	for i := 0; i < 100_000; i++ {
		tok := w.register(func() {})
		if !w.cancel(tok) {
			t.Fatalf("cancel of a registered entry returned false at %d", i)
		}
	}

	if n := len(w.waiting); n != 0 {
		t.Fatalf("map holds %d entries after cancellations (expected 0)", n)
	}
	if n := w.order.Length(); n > sweepMin {
		t.Fatalf("FIFO holds %d stale tokens after cancellations (expected <= %d)", n, sweepMin)
	}
}

func TestWakeRegistryNotifyAll(t *testing.T) {
	w := newWakeRegistry()

	fired := make([]int, 4)
	var toks []uint64
	for i := 0; i < 4; i++ {
		i := i
		toks = append(toks, w.register(func() { fired[i]++ }))
	}
	w.cancel(toks[1])

	if n := w.notifyAll(); n != 3 {
		t.Fatalf("notifyAll woke %d waiters (expected 3)", n)
	}
	if n := w.notifyAll(); n != 0 {
		t.Fatalf("second notifyAll woke %d waiters (expected 0)", n)
	}

	for i, n := range fired {
		want := 1
		if i == 1 {
			want = 0
		}
		if n != want {
			t.Fatalf("waiter %d fired %d times (expected %d)", i, n, want)
		}
	}
}
