// Package controller wires the motion FIFO, the tick-driven generator and
// the global step counters together, and implements the handful of
// commands (EM, ES, QM, QS, CS) that need to reach across both sides of
// that boundary.
package controller

import (
	"ebbcore/core"
	"ebbcore/motion"
)

// Config holds the machine-wide settings the controller is built with.
type Config struct {
	TickHz      uint32
	FifoDepth   int
	LimitChecks bool
	AckEnable   bool
}

// DefaultConfig returns the nominal EBB-class settings.
func DefaultConfig() Config {
	return Config{
		TickHz:      core.DefaultTickHz,
		FifoDepth:   motion.DefaultDepth,
		LimitChecks: true,
		AckEnable:   true,
	}
}

// Controller owns the motion FIFO and generator, the global step
// counters, and the EStop/query/enable side channels that read or mutate
// state the tick context also touches.
type Controller struct {
	cfg Config

	fifo      *motion.Fifo
	generator *motion.Generator

	gsc [motion.NumAxes]int32

	shutdownLatched bool
}

// New builds a Controller with its own FIFO and generator. emitter
// receives step pulses; pass nil for a pure host simulation that only
// tracks global step counts.
func New(cfg Config, emitter motion.StepEmitter) *Controller {
	core.SetTickHz(cfg.TickHz)
	c := &Controller{cfg: cfg, fifo: motion.NewFifo(cfg.FifoDepth)}
	c.generator = motion.NewGenerator(c.fifo, emitter, c)
	return c
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// Fifo returns the motion queue, for command handlers that need to wait
// for room or submit entries.
func (c *Controller) Fifo() *motion.Fifo { return c.fifo }

// Tick advances the step generator by one tick period. The caller (the
// platform's periodic timer, or a host-loopback goroutine) is responsible
// for calling this at the configured TickHz; Tick itself masks interrupts
// for its duration, so the caller must not already hold the mask.
func (c *Controller) Tick() {
	state := core.DisableInterrupts()
	c.generator.Tick()
	core.RecordTiming(core.EvtTimerFire, 0xFF, core.GetTime(), 0, 0)
	core.RestoreInterrupts(state)
}

// Submit waits for FIFO room and enqueues e. Used by every motion command
// handler (SM/AM/LM/XM/HM) once the planner has built the entry.
func (c *Controller) Submit(e *motion.Entry) {
	c.fifo.WaitForRoom()
	slot := c.fifo.Reserve()
	*slot = *e
	c.fifo.Commit()
	core.RecordTiming(core.EvtFifoCommit, 0xFF, core.GetTime(), uint32(e.Command), 0)
	if e.Command == motion.CommandMotorMove {
		core.DebugPrintln("controller: motor move entry committed")
	}
}

// WaitForEmpty blocks until the FIFO has fully drained, as HM requires
// before it can read a stable global position.
func (c *Controller) WaitForEmpty() { c.fifo.WaitForEmpty() }

// Position returns a consistent snapshot of the three global step
// counters, masking the tick for the duration of the read.
func (c *Controller) Position() [motion.NumAxes]int32 {
	state := core.DisableInterrupts()
	pos := c.gsc
	core.RestoreInterrupts(state)
	return pos
}

// CountStep implements motion.Counters: called from the tick context for
// every step edge emitted.
func (c *Controller) CountStep(axis int, negative bool) {
	if negative {
		c.gsc[axis]--
	} else {
		c.gsc[axis]++
	}
}

// EnableMotors implements EM: turns the driver(s) on or off at the given
// microstep resolution(s) and zeroes the global step counters, matching
// the original firmware's behavior of resetting position reference any
// time the drivers are re-enabled.
func (c *Controller) EnableMotors(e1, e2 uint8) {
	if e1 > 0 {
		core.EnableMotor(0, e1)
	} else {
		core.DisableMotor(0)
	}
	if e2 > 0 {
		core.EnableMotor(1, e2)
	} else {
		core.DisableMotor(1)
	}
	c.ClearSteps()
}

// ClearSteps implements CS: zeroes gsc[0..2] under interrupt mask.
func (c *Controller) ClearSteps() {
	state := core.DisableInterrupts()
	c.gsc = [motion.NumAxes]int32{}
	core.RestoreInterrupts(state)
}

// MotorStatus is the result of QM.
type MotorStatus struct {
	CommandExecuting bool
	Motor1Moving     bool
	Motor2Moving     bool
	FifoNonEmpty     bool
}

// QueryMotor implements QM: a command is "executing" iff the FIFO depth is
// nonzero (an entry is adopted or queued); a motor is "moving" iff
// executing and its steps_remaining is still nonzero.
func (c *Controller) QueryMotor() MotorStatus {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	depth := c.fifo.Depth()
	status := MotorStatus{
		CommandExecuting: depth > 0,
		FifoNonEmpty:     depth > 1,
	}
	if active := c.fifo.Active(); active != nil && active.Command == motion.CommandMotorMove {
		status.Motor1Moving = active.StepsRemaining[0] != 0
		status.Motor2Moving = active.StepsRemaining[1] != 0
	}
	return status
}

// EStopResult is the result of ES.
type EStopResult struct {
	CommandInterrupted bool
	FifoSteps1         uint32
	FifoSteps2         uint32
	RemainingSteps1    uint32
	RemainingSteps2    uint32
}

// EStop implements ES: immediately stops any in-progress or queued motor
// move, reporting what was interrupted, and drains the FIFO so the tick
// context finds nothing to adopt on its next pass.
func (c *Controller) EStop() EStopResult {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	var result EStopResult

	if active := c.fifo.Active(); active != nil && active.Command == motion.CommandMotorMove {
		result.CommandInterrupted = true
		result.RemainingSteps1 = active.StepsRemaining[0]
		result.RemainingSteps2 = active.StepsRemaining[1]
	}
	if queued, ok := c.fifo.Queued(); ok && queued.Command == motion.CommandMotorMove {
		result.CommandInterrupted = true
		result.FifoSteps1 = queued.StepsRemaining[0]
		result.FifoSteps2 = queued.StepsRemaining[1]
	}

	c.fifo.Drain()
	core.RecordTiming(core.EvtEStop, 0xFF, core.GetTime(), 0, 0)
	return result
}
