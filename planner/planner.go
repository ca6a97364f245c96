// Package planner turns the external motion commands (SM/AM/LM/XM/HM) into
// motion.Entry values the generator can execute. All of the arithmetic here
// runs at parser time, not tick time, so it is free to use float64 and
// division the way the ISR never can.
package planner

import (
	"errors"
	"math"

	"ebbcore/core"
	"ebbcore/motion"
)

// MinStepPeriodMs is the slowest step period representable by a 15-bit
// step_add integer part at the default 25kHz tick rate: 0x8000 ticks
// between steps is 0x8000/25 == 1310.72ms, rounded to 1311 in the original
// firmware's HM dog-leg threshold check.
const MinStepPeriodMs = 1311

// smallStepThreshold is the A1Stp cutoff between the shift-and-divide
// small-step regime (adds a sub-tick remainder for precision) and the
// coarser large-step regime.
const smallStepThreshold = 0x1FFFF

// stepAddIntegerMax is the largest legal pre-shift integer part of
// step_add (0x8000), chosen so (stepAddIntegerMax << 16) == motion.MaxStepAdd.
const stepAddIntegerMax = 0x8000

var (
	// ErrAxisRange is returned when a step count exceeds the 24-bit range
	// the wire protocol allows.
	ErrAxisRange = errors.New("axis step count out of range")
	// ErrZeroAcceleration is returned when an AM command asks for a
	// velocity change but produces a zero step_add_inc for a moving axis.
	ErrZeroAcceleration = errors.New("acceleration value is 0")
)

// ConstantVelocity builds the entry for the SM command: move steps[i] on
// each axis over durationMs milliseconds at a constant per-axis rate. All
// axes zero produces a CommandDelay entry, matching the original
// firmware's treatment of SM,<duration>,0,0.
func ConstantVelocity(durationMs uint32, steps [motion.NumAxes]int32) (*motion.Entry, error) {
	if steps[0] == 0 && steps[1] == 0 && steps[2] == 0 {
		return &motion.Entry{
			Command:    motion.CommandDelay,
			DelayTicks: core.TicksFromMS(durationMs),
		}, nil
	}

	e := &motion.Entry{Command: motion.CommandMotorMove}
	ticksTotal := core.TicksFromMS(durationMs)
	ticksPerMs := core.TickHz() / 1000

	for axis := 0; axis < motion.NumAxes; axis++ {
		s := steps[axis]
		if s < 0 {
			e.DirBits |= 1 << uint(axis)
			s = -s
		}
		abs := uint32(s)
		if abs > 0xFFFFFF {
			return nil, ErrAxisRange
		}
		e.StepAdd[axis] = computeStepAdd(abs, durationMs, ticksTotal, ticksPerMs)
		e.StepsRemaining[axis] = abs
	}
	return e, nil
}

// computeStepAdd ports process_SM's per-axis fixed-point conversion: the
// planner's one unavoidable piece of integer-division arithmetic.
func computeStepAdd(abs uint32, durationMs uint32, ticksTotal uint32, ticksPerMs uint32) uint32 {
	if abs == 0 {
		return 0
	}

	var temp, remainder uint32
	if abs < smallStepThreshold {
		temp = (abs << 15) / ticksTotal
		if durationMs > 30 {
			rem := (abs << 15) % ticksTotal
			remainder = (rem << 16) / ticksTotal
		}
	} else {
		temp = ((abs / durationMs) * stepAddIntegerMax) / ticksPerMs
	}

	if temp > stepAddIntegerMax {
		temp = stepAddIntegerMax
		core.DebugPrintln("Major malfunction: planner step_add integer part clamped to 0x8000")
	}
	if temp == 0 {
		temp = 1
		core.DebugPrintln("Major malfunction: planner step_add integer part bumped up from 0")
	}

	if durationMs > 30 {
		return (temp << 16) + remainder
	}
	return temp << 16
}

// Accelerated builds the entry for the AM command. Velocities are in
// steps/second of the combined (vector) move; distance is the rounded
// Euclidean length of the two planar axes' step counts.
func Accelerated(velocityInitial, velocityFinal uint16, steps1, steps2 int32) (*motion.Entry, error) {
	e := &motion.Entry{Command: motion.CommandMotorMove}

	s1, s2 := steps1, steps2
	if s1 < 0 {
		e.DirBits |= motion.Dir1Bit
		s1 = -s1
	}
	if s2 < 0 {
		e.DirBits |= motion.Dir2Bit
		s2 = -s2
	}
	if uint32(s1) > 0xFFFFFF || uint32(s2) > 0xFFFFFF {
		return nil, ErrAxisRange
	}

	distance := math.Round(math.Sqrt(float64(s1)*float64(s1) + float64(s2)*float64(s2)))
	if distance == 0 {
		// Degenerate: zero combined distance requested, nothing to do.
		return &motion.Entry{Command: motion.CommandDelay}, nil
	}

	// phasePerStep converts steps/second into the Q-scale step_add unit:
	// motion.PhaseUnit ticks per second at full rate, so one step/second of
	// combined velocity contributes PhaseUnit/TICK_HZ to step_add.
	phasePerStep := float64(motion.PhaseUnit) / float64(core.TickHz())

	distanceTemp := (float64(velocityInitial) * phasePerStep) / distance
	e.StepAdd[0] = uint32(distanceTemp * float64(s1))
	e.StepAdd[1] = uint32(distanceTemp * float64(s2))
	e.StepsRemaining[0] = uint32(s1)
	e.StepsRemaining[1] = uint32(s2)

	accelTemp := (float64(velocityFinal)*float64(velocityFinal) - float64(velocityInitial)*float64(velocityInitial)) /
		(distance * distance * 2)
	phasePerStepSq := phasePerStep / float64(core.TickHz())
	e.StepAddInc[0] = int32(float64(s1) * accelTemp * phasePerStepSq)
	e.StepAddInc[1] = int32(float64(s2) * accelTemp * phasePerStepSq)

	if velocityInitial != velocityFinal {
		if e.StepAddInc[0] == 0 && e.StepsRemaining[0] > 0 {
			return nil, ErrZeroAcceleration
		}
		if e.StepAddInc[1] == 0 && e.StepsRemaining[1] > 0 {
			return nil, ErrZeroAcceleration
		}
	}

	return e, nil
}

// LowLevel builds the entry for the LM command: the caller supplies the
// already-computed step_add/step_add_inc/steps_remaining values directly,
// bypassing the duration-based conversion SM and AM perform. Direction is
// taken from the sign of steps_remaining, not step_add -- step_add is an
// unsigned rate, only steps_remaining carries which way the axis moves. If
// both axes are idle (steps_remaining zero, or both step_add and
// step_add_inc zero) the move is a no-op and LowLevel returns a nil entry.
func LowLevel(stepAdd [motion.NumAxes]uint32, stepAddInc [motion.NumAxes]int32, stepsRemaining [motion.NumAxes]int32) *motion.Entry {
	idle := true
	for axis := 0; axis < 2; axis++ {
		if stepsRemaining[axis] != 0 && (stepAdd[axis] != 0 || stepAddInc[axis] != 0) {
			idle = false
			break
		}
	}
	if idle {
		return nil
	}

	e := &motion.Entry{Command: motion.CommandMotorMove}
	for axis := 0; axis < motion.NumAxes; axis++ {
		remaining := stepsRemaining[axis]
		if remaining < 0 {
			e.DirBits |= 1 << uint(axis)
			remaining = -remaining
		}
		e.StepAdd[axis] = stepAdd[axis]
		e.StepAddInc[axis] = stepAddInc[axis]
		e.StepsRemaining[axis] = uint32(remaining)
	}
	return e
}

// MixedAxis builds the entry for the XM command: mixed-axis geometry
// (H-Bot / CoreXY) where axis1 = a+b and axis2 = a-b.
func MixedAxis(durationMs uint32, aSteps, bSteps int32) (*motion.Entry, error) {
	var steps [motion.NumAxes]int32
	steps[0] = aSteps + bSteps
	steps[1] = aSteps - bSteps
	return ConstantVelocity(durationMs, steps)
}
