//go:build rp2040

package tinygostep

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for step pulse generation: one pulse per TxPut, with a fixed
// short delay so the pin is guaranteed high long enough for the driver to
// latch it.
//
//	Bits 0-15:  pulse count minus one (jmp x-- runs the loop count+1 times)
//	Bits 16-23: delay cycles
//	Bit 24:     direction (the OUT order is X, Y, then the DIR pin)
func buildStepperProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),
		asm.Out(rp2pio.OutDestX, 16).Encode(),
		asm.Out(rp2pio.OutDestY, 8).Encode(),
		asm.Out(rp2pio.OutDestPins, 1).Encode(),
		// step_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(),
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
		// delay_loop:
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(),
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(),
		// .wrap
	}
}

const stepperPIOOrigin = 0

// pioAxis drives one axis's STEP/DIR pair through a dedicated PIO state
// machine, so step pulses keep their timing even while the goroutine
// driving the motion generator is scheduled out.
type pioAxis struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	stepPin machine.Pin
	dirPin  machine.Pin
}

func newPIOAxis(pioNum, smNum uint8, stepPin, dirPin uint8) (*pioAxis, error) {
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}

	a := &pioAxis{
		pio:     pioHW,
		sm:      pioHW.StateMachine(smNum),
		stepPin: machine.Pin(stepPin),
		dirPin:  machine.Pin(dirPin),
	}
	a.sm.TryClaim()

	program := buildStepperProgram()
	offset, err := a.pio.AddProgram(program, stepperPIOOrigin)
	if err != nil {
		return nil, err
	}

	a.stepPin.Configure(machine.PinConfig{Mode: a.pio.PinMode()})
	a.dirPin.Configure(machine.PinConfig{Mode: a.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(a.stepPin, 1)
	cfg.SetOutPins(a.dirPin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	a.sm.Init(offset, cfg)
	a.sm.SetPindirsConsecutive(a.stepPin, 1, true)
	a.sm.SetPindirsConsecutive(a.dirPin, 1, true)
	a.sm.SetPinsConsecutive(a.stepPin, 1, false)
	a.sm.SetPinsConsecutive(a.dirPin, 1, false)
	a.sm.SetEnabled(true)

	return a, nil
}

func (a *pioAxis) step(negative bool) {
	cmd := uint32(0) | (1 << 16)
	if negative {
		cmd |= 1 << 24
	}
	for a.sm.IsTxFIFOFull() {
	}
	a.sm.TxPut(cmd)
}

func (a *pioAxis) stop() {
	a.sm.SetEnabled(false)
	a.sm.ClearFIFOs()
	a.sm.Restart()
	a.sm.SetEnabled(true)
}

// PIOEmitter implements motion.StepEmitter across every configured axis,
// each on its own PIO state machine so a burst on one axis never delays a
// pulse on another.
type PIOEmitter struct {
	axes [3]*pioAxis
}

// AxisPinout names the STEP/DIR GPIO pair and PIO assignment for one axis.
type AxisPinout struct {
	StepPin, DirPin  uint8
	PIONum, StateNum uint8
}

// NewPIOEmitter claims one PIO state machine per populated pinout. A zero
// AxisPinout (StepPin == DirPin == 0) leaves that axis unconfigured; Step
// calls for it are silently dropped.
func NewPIOEmitter(pinouts [3]AxisPinout) (*PIOEmitter, error) {
	e := &PIOEmitter{}
	for i, p := range pinouts {
		if p.StepPin == 0 && p.DirPin == 0 {
			continue
		}
		axis, err := newPIOAxis(p.PIONum, p.StateNum, p.StepPin, p.DirPin)
		if err != nil {
			return nil, err
		}
		e.axes[i] = axis
	}
	return e, nil
}

// Step implements motion.StepEmitter.
func (e *PIOEmitter) Step(axis int, negative bool) {
	if axis < 0 || axis >= len(e.axes) || e.axes[axis] == nil {
		return
	}
	e.axes[axis].step(negative)
}

// Stop halts every configured axis's state machine immediately, used on
// emergency stop to guarantee no queued pulse escapes after the FIFO has
// been drained.
func (e *PIOEmitter) Stop() {
	for _, a := range e.axes {
		if a != nil {
			a.stop()
		}
	}
}
