//go:build tinygo

package tinygostep

import "machine"

// GPIOEmitter drives STEP/DIR pins with plain machine.Pin toggling. It has
// no hardware timing assist, so step-rate headroom is lower than the PIO
// backend, but it runs on any TinyGo target, not just RP2040.
type GPIOEmitter struct {
	step [3]machine.Pin
	dir  [3]machine.Pin
	have [3]bool
}

// NewGPIOEmitter configures the STEP/DIR pin pairs named by pinouts. An
// axis with StepPin == DirPin == 0 is left unconfigured.
func NewGPIOEmitter(pinouts [3]AxisPinout) *GPIOEmitter {
	e := &GPIOEmitter{}
	for i, p := range pinouts {
		if p.StepPin == 0 && p.DirPin == 0 {
			continue
		}
		e.step[i] = machine.Pin(p.StepPin)
		e.dir[i] = machine.Pin(p.DirPin)
		e.step[i].Configure(machine.PinConfig{Mode: machine.PinOutput})
		e.dir[i].Configure(machine.PinConfig{Mode: machine.PinOutput})
		e.step[i].Low()
		e.dir[i].Low()
		e.have[i] = true
	}
	return e
}

// Step implements motion.StepEmitter.
func (e *GPIOEmitter) Step(axis int, negative bool) {
	if axis < 0 || axis >= len(e.step) || !e.have[axis] {
		return
	}
	e.dir[axis].Set(negative)
	e.step[axis].High()
	e.step[axis].Low()
}
