package motion

import (
	"runtime"
	"sync/atomic"
)

// DefaultDepth is the nominal motion queue depth: the spec targets no
// command lookahead, so one active entry plus room for the foreground to
// prepare the next is enough.
const DefaultDepth = 2

// Fifo is the single-producer/single-consumer queue between the foreground
// command parser (producer) and the tick-driven Generator (consumer). The
// consumer operates directly on the head slot rather than copying it out,
// so EStop and QM can inspect the in-flight entry without waiting for it
// to retire.
type Fifo struct {
	slots []Entry
	cap   uint32

	in    uint32 // next slot the producer will fill
	out   uint32 // slot currently owned by the generator (the "active" entry)
	depth int32  // atomic: number of occupied slots, queued + active
}

// NewFifo creates a Fifo with room for capacity entries (minimum 1).
func NewFifo(capacity int) *Fifo {
	if capacity < 1 {
		capacity = 1
	}
	return &Fifo{slots: make([]Entry, capacity), cap: uint32(capacity)}
}

// Capacity returns the number of slots the Fifo was built with.
func (f *Fifo) Capacity() int { return int(f.cap) }

// Depth returns the number of occupied slots (queued plus active).
func (f *Fifo) Depth() int { return int(atomic.LoadInt32(&f.depth)) }

// HasRoom reports whether Reserve/Commit can be used right now.
func (f *Fifo) HasRoom() bool { return f.Depth() < int(f.cap) }

// WaitForRoom blocks the calling goroutine until a slot is free. Spec
// describes this as the foreground spinning on FIFO depth; on host Go we
// yield the processor between polls instead of pegging a core.
func (f *Fifo) WaitForRoom() {
	for !f.HasRoom() {
		runtime.Gosched()
	}
}

// Reserve returns the slot the caller should populate before Commit. The
// caller must already hold room (via WaitForRoom or a prior HasRoom check).
func (f *Fifo) Reserve() *Entry {
	return &f.slots[f.in]
}

// Commit publishes the entry written via Reserve, making it visible to the
// generator, and advances the produce index.
func (f *Fifo) Commit() {
	f.in = (f.in + 1) % f.cap
	atomic.AddInt32(&f.depth, 1)
}

// WaitForEmpty blocks until the FIFO holds no entries at all (queued or
// active under the generator).
func (f *Fifo) WaitForEmpty() {
	for f.Depth() > 0 {
		runtime.Gosched()
	}
}

// Active returns the entry currently owned by the generator, or nil if the
// FIFO is empty. Must be called from the tick context, or by the
// foreground while core.DisableInterrupts is held.
func (f *Fifo) Active() *Entry {
	if f.Depth() == 0 {
		return nil
	}
	return &f.slots[f.out]
}

// Queued returns the entry waiting behind the active one, if any.
func (f *Fifo) Queued() (*Entry, bool) {
	if f.Depth() < 2 {
		return nil, false
	}
	return &f.slots[(f.out+1)%f.cap], true
}

// RetireActive frees the slot owned by the generator once its command has
// fully completed.
func (f *Fifo) RetireActive() {
	f.slots[f.out] = Entry{}
	f.out = (f.out + 1) % f.cap
	atomic.AddInt32(&f.depth, -1)
}

// Drain empties the FIFO immediately, discarding the active and any
// queued entries. Used by EStop.
func (f *Fifo) Drain() {
	for i := range f.slots {
		f.slots[i] = Entry{}
	}
	f.in = 0
	f.out = 0
	atomic.StoreInt32(&f.depth, 0)
}
