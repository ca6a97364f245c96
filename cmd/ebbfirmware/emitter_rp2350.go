//go:build rp2350

package main

import (
	"ebbcore/hal/tinygostep"
	"ebbcore/motion"
)

// newStepEmitter on RP2350 uses plain GPIO toggling; the PIO assembler
// wiring in hal/tinygostep targets the RP2040 PIO block specifically.
func newStepEmitter(pinouts [3]tinygostep.AxisPinout) motion.StepEmitter {
	return tinygostep.NewGPIOEmitter(pinouts)
}
