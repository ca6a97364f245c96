package planner

import (
	"errors"

	"ebbcore/core"
	"ebbcore/motion"
)

// ErrStepRateTooFast is returned when a homing move would need more than
// TICK_HZ steps/second on whichever axis is primary.
var ErrStepRateTooFast = errors.New("home step rate exceeds tick rate")

// HomeLeg is one motion.Entry worth of the (possibly split) home move,
// returned in the order they must be queued.
type HomeLeg struct {
	DurationMs uint32
	Steps      [motion.NumAxes]int32
}

// Home computes the leg(s) needed to return from position (pos[0..2]) to
// the origin at the requested combined step rate. The primary axis (the
// one with the largest absolute distance to travel) sets the move's
// duration; any other axis whose step period over that duration would be
// MinStepPeriodMs or longer gets a "dog-leg" lead-in move first, covering
// its whole travel at the requested rate while the primary axis moves a
// matching share of its own, and the final leg carries the primary axis
// home with the already-homed axis contributing zero steps.
func Home(stepRate uint32, pos [motion.NumAxes]int32) ([]HomeLeg, error) {
	steps := [motion.NumAxes]int32{-pos[0], -pos[1], -pos[2]}
	abs := [motion.NumAxes]uint32{absI32(steps[0]), absI32(steps[1]), absI32(steps[2])}

	for _, a := range abs {
		if a > 0xFFFFFF {
			return nil, ErrAxisRange
		}
	}

	primary := 0
	for axis := 1; axis < motion.NumAxes; axis++ {
		if abs[axis] > abs[primary] {
			primary = axis
		}
	}

	if abs[primary] == 0 {
		return []HomeLeg{{DurationMs: 10, Steps: steps}}, nil
	}

	ticksPerMs := core.TickHz() / 1000
	if stepRate/1000 > ticksPerMs {
		return nil, ErrStepRateTooFast
	}

	duration := (abs[primary] * 1000) / stepRate

	var legs []HomeLeg
	for axis := 0; axis < motion.NumAxes; axis++ {
		if axis == primary || abs[axis] == 0 {
			continue
		}
		if duration/MinStepPeriodMs >= abs[axis] {
			legDuration := (abs[axis] * 1000) / stepRate
			legSteps := steps
			// The primary axis moves proportionally during this lead-in leg
			// (same sign as its overall travel); the other non-primary,
			// non-homed-yet axis contributes nothing until the final leg.
			legSteps[primary] = scaleTowardZero(steps[primary], abs[axis], abs[primary])
			for other := 0; other < motion.NumAxes; other++ {
				if other != axis && other != primary {
					legSteps[other] = 0
				}
			}
			legs = append(legs, HomeLeg{DurationMs: legDuration, Steps: legSteps})

			steps[primary] -= legSteps[primary]
			steps[axis] = 0
			duration = (abs[primary] * 1000) / stepRate
		}
	}

	if duration < 10 {
		duration = 10
	}
	legs = append(legs, HomeLeg{DurationMs: duration, Steps: steps})
	return legs, nil
}

func absI32(v int32) uint32 {
	if v < 0 {
		return uint32(-v)
	}
	return uint32(v)
}

// scaleTowardZero returns the portion of total (keeping its sign) that
// corresponds to num/den of its magnitude, rounding toward zero.
func scaleTowardZero(total int32, num, den uint32) int32 {
	if den == 0 {
		return 0
	}
	mag := absI32(total)
	scaled := int32(uint64(mag) * uint64(num) / uint64(den))
	if total < 0 {
		return -scaled
	}
	return scaled
}
