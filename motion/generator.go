package motion

import "ebbcore/core"

// StepEmitter is the hardware hook the generator pulses on each axis step.
// Implementations must be safe to call from the tick context: no
// allocation, no blocking.
type StepEmitter interface {
	Step(axis int, negative bool)
}

// StepFunc adapts a plain function to StepEmitter.
type StepFunc func(axis int, negative bool)

// Step implements StepEmitter.
func (f StepFunc) Step(axis int, negative bool) { f(axis, negative) }

// Counters receives per-axis step deltas as they're emitted, so the
// controller can maintain the global step counters without the generator
// needing to know anything about gsc bookkeeping.
type Counters interface {
	CountStep(axis int, negative bool)
}

// Generator is the tick-rate step engine: the software equivalent of the
// ISR in the original firmware. Call Tick once per TICK_HZ period.
type Generator struct {
	fifo     *Fifo
	emitter  StepEmitter
	counters Counters

	phase [NumAxes]uint32
	// activeEntry tracks whether phase has been primed for the entry
	// currently at the FIFO head; it's reset whenever the active slot
	// changes underneath us (a new entry adopted after retirement).
	activeEntry *Entry
}

// NewGenerator builds a Generator driving fifo, calling emitter for every
// step edge and counters for every step so global position can be tracked.
func NewGenerator(fifo *Fifo, emitter StepEmitter, counters Counters) *Generator {
	return &Generator{fifo: fifo, emitter: emitter, counters: counters}
}

// Tick processes exactly one tick period. It must run with the FIFO's
// active slot exclusively owned by the caller (core.DisableInterrupts on
// host Go, the real ISR context on hardware).
func (g *Generator) Tick() {
	active := g.fifo.Active()
	if active == nil {
		g.activeEntry = nil
		return
	}
	if active != g.activeEntry {
		g.activeEntry = active
		g.phase = [NumAxes]uint32{}
		core.RecordTiming(core.EvtEntryAdopted, 0xFF, core.GetTime(), 0, 0)
	}

	switch active.Command {
	case CommandDelay:
		g.tickDelay(active)
	case CommandMotorMove:
		g.tickMove(active)
	default:
		g.retire()
	}
}

func (g *Generator) tickDelay(e *Entry) {
	if e.DelayTicks > 0 {
		e.DelayTicks--
	}
	if e.DelayTicks == 0 {
		g.retire()
	}
}

func (g *Generator) tickMove(e *Entry) {
	for axis := 0; axis < NumAxes; axis++ {
		if e.StepsRemaining[axis] == 0 {
			continue
		}

		sum := g.phase[axis] + e.StepAdd[axis]
		if sum >= PhaseUnit {
			sum -= PhaseUnit
			e.StepsRemaining[axis]--
			negative := e.AxisNegative(axis)
			if g.emitter != nil {
				g.emitter.Step(axis, negative)
			}
			if g.counters != nil {
				g.counters.CountStep(axis, negative)
			}
		}
		g.phase[axis] = sum

		if e.StepAddInc[axis] != 0 {
			next := int64(e.StepAdd[axis]) + int64(e.StepAddInc[axis])
			e.StepAdd[axis] = saturateStepAdd(next)
		}
	}

	if e.Done() {
		g.retire()
	}
}

func (g *Generator) retire() {
	g.fifo.RetireActive()
	g.activeEntry = nil
	g.phase = [NumAxes]uint32{}
}
