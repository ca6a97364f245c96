package controller

import (
	"testing"

	"ebbcore/motion"
)

type recordingEmitter struct {
	count int
}

func (r *recordingEmitter) Step(axis int, negative bool) { r.count++ }

func TestSubmitAndTickRetiresDelay(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.Submit(&motion.Entry{Command: motion.CommandDelay, DelayTicks: 2})

	for i := 0; i < 2; i++ {
		if c.Fifo().Depth() == 0 {
			t.Fatalf("delay retired too early at tick %d", i)
		}
		c.Tick()
	}
	if c.Fifo().Depth() != 0 {
		t.Fatalf("expected delay entry retired")
	}
}

func TestPositionTracksSteps(t *testing.T) {
	emitter := &recordingEmitter{}
	c := New(DefaultConfig(), emitter)

	c.Submit(&motion.Entry{
		Command:        motion.CommandMotorMove,
		StepAdd:        [motion.NumAxes]uint32{motion.MaxStepAdd, 0, 0},
		StepsRemaining: [motion.NumAxes]uint32{5, 0, 0},
	})
	for i := 0; i < 5; i++ {
		c.Tick()
	}

	pos := c.Position()
	if pos[0] != 5 {
		t.Fatalf("gsc[0] = %d, want 5", pos[0])
	}
	if emitter.count != 5 {
		t.Fatalf("emitter saw %d steps, want 5", emitter.count)
	}
}

func TestClearStepsZeroesPosition(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.Submit(&motion.Entry{
		Command:        motion.CommandMotorMove,
		StepAdd:        [motion.NumAxes]uint32{motion.MaxStepAdd, 0, 0},
		StepsRemaining: [motion.NumAxes]uint32{3, 0, 0},
	})
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	c.ClearSteps()
	if pos := c.Position(); pos != [motion.NumAxes]int32{} {
		t.Fatalf("expected zeroed position after ClearSteps, got %+v", pos)
	}
}

func TestEStopDrainsFifoAndReportsInterrupted(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.Submit(&motion.Entry{
		Command:        motion.CommandMotorMove,
		StepAdd:        [motion.NumAxes]uint32{1 << 16, 0, 0},
		StepsRemaining: [motion.NumAxes]uint32{1000, 0, 0},
	})

	result := c.EStop()
	if !result.CommandInterrupted {
		t.Fatalf("expected CommandInterrupted for an in-flight move")
	}
	if result.RemainingSteps1 != 1000 {
		t.Fatalf("RemainingSteps1 = %d, want 1000", result.RemainingSteps1)
	}
	if c.Fifo().Depth() != 0 {
		t.Fatalf("expected EStop to drain the FIFO")
	}

	c.Tick() // must be a no-op: nothing left to adopt
}

func TestQueryMotorReportsIdleWhenEmpty(t *testing.T) {
	c := New(DefaultConfig(), nil)
	status := c.QueryMotor()
	if status.CommandExecuting || status.Motor1Moving || status.FifoNonEmpty {
		t.Fatalf("expected idle status on an empty FIFO, got %+v", status)
	}
}
