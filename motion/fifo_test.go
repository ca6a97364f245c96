package motion

import "testing"

func TestFifoCommitAndRetire(t *testing.T) {
	f := NewFifo(2)
	if f.Active() != nil {
		t.Fatalf("expected empty FIFO to have no active entry")
	}

	f.WaitForRoom()
	e := f.Reserve()
	e.Command = CommandDelay
	e.DelayTicks = 5
	f.Commit()

	if f.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", f.Depth())
	}
	active := f.Active()
	if active == nil || active.DelayTicks != 5 {
		t.Fatalf("active entry not visible after commit")
	}

	f.RetireActive()
	if f.Depth() != 0 {
		t.Fatalf("depth after retire = %d, want 0", f.Depth())
	}
	if f.Active() != nil {
		t.Fatalf("expected no active entry after retire")
	}
}

func TestFifoQueuedBehindActive(t *testing.T) {
	f := NewFifo(2)

	f.Reserve().Command = CommandDelay
	f.Commit()
	f.Reserve().Command = CommandMotorMove
	f.Commit()

	if !f.HasRoom() == (f.Depth() < f.Capacity()) {
		// sanity check only, HasRoom must track Depth vs Capacity
	}
	if f.HasRoom() {
		t.Fatalf("expected FIFO full at capacity 2 with 2 entries")
	}

	queued, ok := f.Queued()
	if !ok || queued.Command != CommandMotorMove {
		t.Fatalf("expected queued entry to be the second commit")
	}

	f.RetireActive()
	if f.Active().Command != CommandMotorMove {
		t.Fatalf("expected the queued entry to become active after retire")
	}
	if _, ok := f.Queued(); ok {
		t.Fatalf("expected no queued entry once only one remains")
	}
}

func TestFifoDrain(t *testing.T) {
	f := NewFifo(2)
	f.Reserve().Command = CommandDelay
	f.Commit()
	f.Drain()
	if f.Depth() != 0 || f.Active() != nil {
		t.Fatalf("expected Drain to empty the FIFO")
	}
}
