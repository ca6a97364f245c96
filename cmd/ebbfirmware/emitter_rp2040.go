//go:build rp2040

package main

import (
	"ebbcore/hal/tinygostep"
	"ebbcore/motion"
)

// newStepEmitter prefers the PIO backend on RP2040 for jitter-free pulses,
// falling back to plain GPIO toggling if NewPIOEmitter fails to load the
// PIO program. Whether each state machine was actually claimed is not
// checked.
func newStepEmitter(pinouts [3]tinygostep.AxisPinout) motion.StepEmitter {
	if e, err := tinygostep.NewPIOEmitter(pinouts); err == nil {
		return e
	}
	return tinygostep.NewGPIOEmitter(pinouts)
}
