package planner

import (
	"testing"

	"ebbcore/core"
	"ebbcore/motion"
)

func init() {
	core.SetTickHz(core.DefaultTickHz)
}

func TestConstantVelocityDelayOnZeroSteps(t *testing.T) {
	e, err := ConstantVelocity(50, [motion.NumAxes]int32{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Command != motion.CommandDelay {
		t.Fatalf("expected CommandDelay, got %v", e.Command)
	}
	if e.DelayTicks != core.TicksFromMS(50) {
		t.Fatalf("DelayTicks = %d, want %d", e.DelayTicks, core.TicksFromMS(50))
	}
}

func TestConstantVelocityMaxRateClampsToOneStepPerTick(t *testing.T) {
	// 1000 steps in 1ms: far faster than TICK_HZ allows, must clamp.
	e, err := ConstantVelocity(1, [motion.NumAxes]int32{1000, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.StepAdd[0] != motion.MaxStepAdd {
		t.Fatalf("StepAdd[0] = 0x%x, want clamped to MaxStepAdd (0x%x)", e.StepAdd[0], motion.MaxStepAdd)
	}
	if e.StepsRemaining[0] != 1000 {
		t.Fatalf("StepsRemaining[0] = %d, want 1000", e.StepsRemaining[0])
	}
}

func TestConstantVelocityDirectionBits(t *testing.T) {
	e, err := ConstantVelocity(100, [motion.NumAxes]int32{-10, 10, -10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := motion.Dir1Bit | motion.Dir3Bit
	if e.DirBits != want {
		t.Fatalf("DirBits = 0x%x, want 0x%x", e.DirBits, want)
	}
	if e.StepsRemaining[0] != 10 || e.StepsRemaining[1] != 10 || e.StepsRemaining[2] != 10 {
		t.Fatalf("expected absolute step counts, got %+v", e.StepsRemaining)
	}
}

func TestConstantVelocityRejectsOversizedAxis(t *testing.T) {
	_, err := ConstantVelocity(1000, [motion.NumAxes]int32{0x1000000, 0, 0})
	if err != ErrAxisRange {
		t.Fatalf("expected ErrAxisRange, got %v", err)
	}
}

func TestConstantVelocitySlowestRateMatchesMinStepPeriod(t *testing.T) {
	// A single step over the slowest legal duration should produce
	// StepAdd close to MinStepAdd (temp == 1 before the <<16).
	durationMs := uint32(MinStepPeriodMs)
	e, err := ConstantVelocity(durationMs, [motion.NumAxes]int32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	integerPart := e.StepAdd[0] >> 16
	if integerPart != 1 {
		t.Fatalf("expected minimal nonzero integer part (1), got %d", integerPart)
	}
}

func TestMixedAxisCombinesSteps(t *testing.T) {
	e, err := MixedAxis(100, 10, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.StepsRemaining[0] != 14 || e.StepsRemaining[1] != 6 {
		t.Fatalf("expected axis1=14 axis2=6, got %+v", e.StepsRemaining)
	}
}

func TestAcceleratedConstantVelocityProducesZeroIncrement(t *testing.T) {
	e, err := Accelerated(1000, 1000, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.StepAddInc[0] != 0 {
		t.Fatalf("expected zero acceleration for equal velocities, got %d", e.StepAddInc[0])
	}
	if e.StepAdd[0] == 0 {
		t.Fatalf("expected nonzero step_add for a moving axis")
	}
}

func TestAcceleratedRampsUp(t *testing.T) {
	e, err := Accelerated(100, 5000, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.StepAddInc[0] <= 0 {
		t.Fatalf("expected positive acceleration for velocity ramp-up, got %d", e.StepAddInc[0])
	}
}

func TestHomeNoSplitNeeded(t *testing.T) {
	legs, err := Home(1000, [motion.NumAxes]int32{100, 20, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected a single leg when no dog-leg split is needed, got %d", len(legs))
	}
	if legs[0].Steps[0] != -100 || legs[0].Steps[1] != -20 {
		t.Fatalf("expected home leg to undo current position, got %+v", legs[0].Steps)
	}
}

func TestHomeSplitsWhenSecondaryTooSlow(t *testing.T) {
	// Axis1 has a huge distance, axis2 only 1 step: at a modest rate axis2
	// would take far longer than MinStepPeriodMs per step, forcing a split.
	legs, err := Home(1000, [motion.NumAxes]int32{2_000_000, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected a dog-leg split into 2 legs, got %d", len(legs))
	}
}

func TestHomeRejectsTooFastRate(t *testing.T) {
	_, err := Home(core.DefaultTickHz+1000, [motion.NumAxes]int32{100, 0, 0})
	if err != ErrStepRateTooFast {
		t.Fatalf("expected ErrStepRateTooFast, got %v", err)
	}
}

func TestHomeAtOriginIsNoop(t *testing.T) {
	legs, err := Home(1000, [motion.NumAxes]int32{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 1 || legs[0].Steps != [motion.NumAxes]int32{0, 0, 0} {
		t.Fatalf("expected a no-op leg at the origin, got %+v", legs)
	}
}

func TestAcceleratedRejectsOversizedAxis(t *testing.T) {
	_, err := Accelerated(100, 5000, 0x1000000, 0)
	if err != ErrAxisRange {
		t.Fatalf("expected ErrAxisRange, got %v", err)
	}
}

func TestLowLevelDirectionComesFromStepsRemaining(t *testing.T) {
	// step_add is positive on both axes; direction must still follow the
	// sign of steps_remaining, not step_add.
	stepAdd := [motion.NumAxes]uint32{100, 100, 0}
	stepAddInc := [motion.NumAxes]int32{0, 0, 0}
	stepsRemaining := [motion.NumAxes]int32{-50, 50, 0}

	e := LowLevel(stepAdd, stepAddInc, stepsRemaining)
	if e == nil {
		t.Fatalf("expected a motor move entry, got nil")
	}
	if e.DirBits&motion.Dir1Bit == 0 {
		t.Fatalf("expected Dir1Bit set from negative steps_remaining[0], DirBits = 0x%x", e.DirBits)
	}
	if e.DirBits&motion.Dir2Bit != 0 {
		t.Fatalf("expected Dir2Bit clear, DirBits = 0x%x", e.DirBits)
	}
	if e.StepsRemaining[0] != 50 || e.StepsRemaining[1] != 50 {
		t.Fatalf("expected absolute step counts, got %+v", e.StepsRemaining)
	}
}

func TestLowLevelRejectsAllIdleAxes(t *testing.T) {
	stepAdd := [motion.NumAxes]uint32{0, 0, 0}
	stepAddInc := [motion.NumAxes]int32{0, 0, 0}
	stepsRemaining := [motion.NumAxes]int32{0, 0, 0}

	if e := LowLevel(stepAdd, stepAddInc, stepsRemaining); e != nil {
		t.Fatalf("expected nil entry when both axes are idle, got %+v", e)
	}
}

func TestLowLevelKeepsMoveWhenOnlyOneAxisIsIdle(t *testing.T) {
	// Axis2 is fully idle (zero steps_remaining, step_add and step_add_inc)
	// but axis1 is actively moving, so the move as a whole is not rejected.
	stepAdd := [motion.NumAxes]uint32{100, 0, 0}
	stepAddInc := [motion.NumAxes]int32{0, 0, 0}
	stepsRemaining := [motion.NumAxes]int32{50, 0, 0}

	e := LowLevel(stepAdd, stepAddInc, stepsRemaining)
	if e == nil {
		t.Fatalf("expected a motor move entry when one axis is active, got nil")
	}
	if e.StepsRemaining[0] != 50 {
		t.Fatalf("StepsRemaining[0] = %d, want 50", e.StepsRemaining[0])
	}
}
