//go:build tinygo

// Package tinygostep is the hardware backend that runs on a real
// microcontroller: it drives STEP/DIR/ENABLE pins directly through
// TinyGo's machine package and, on RP2040, can offload step-pulse emission
// to the PIO block with one state machine per configured axis.
package tinygostep

import (
	"machine"

	"ebbcore/core"
)

// MachineGPIO implements core.GPIODriver directly on top of machine.Pin,
// for boards with enough free GPIOs to wire every control pin natively.
type MachineGPIO struct{}

func (MachineGPIO) ConfigureOutput(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (MachineGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (MachineGPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return nil
}

func (MachineGPIO) SetPin(pin core.GPIOPin, value bool) error {
	machine.Pin(pin).Set(value)
	return nil
}

func (MachineGPIO) GetPin(pin core.GPIOPin) (bool, error) {
	return machine.Pin(pin).Get(), nil
}

func (m MachineGPIO) ReadPin(pin core.GPIOPin) bool {
	v, _ := m.GetPin(pin)
	return v
}
