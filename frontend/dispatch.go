package frontend

import (
	"strconv"

	"ebbcore/controller"
	"ebbcore/core"
	"ebbcore/motion"
	"ebbcore/planner"
)

// Dispatcher parses and executes one line at a time against a Controller,
// formatting its "OK" / "!0 Err:" response the way an EBB-class board does.
type Dispatcher struct {
	ctrl *controller.Controller
}

// NewDispatcher builds a Dispatcher driving ctrl.
func NewDispatcher(ctrl *controller.Controller) *Dispatcher {
	return &Dispatcher{ctrl: ctrl}
}

// Handle parses and executes raw (one line, CR/LF already stripped) and
// returns the bytes that should be written back to the host.
func (d *Dispatcher) Handle(raw string) string {
	line, err := ParseLine(raw)
	if err != nil {
		return errResponse(err)
	}
	if line == nil {
		return ""
	}

	var body string
	if err := d.dispatch(line, &body); err != nil {
		return errResponse(err)
	}

	// QM's status line is its whole reply; it is never followed by OK.
	if !d.ctrl.Config().AckEnable || line.Name == "QM" {
		return body
	}
	return body + "OK\n\r"
}

func (d *Dispatcher) dispatch(line *Line, body *string) error {
	switch line.Name {
	case "EM":
		return d.handleEM(line)
	case "SM":
		return d.handleSM(line)
	case "AM":
		return d.handleAM(line)
	case "LM":
		return d.handleLM(line)
	case "XM":
		return d.handleXM(line)
	case "HM":
		return d.handleHM(line)
	case "ES":
		*body = d.handleES()
		return nil
	case "QM":
		*body = d.handleQM()
		return nil
	case "QS":
		*body = d.handleQS()
		return nil
	case "CS":
		d.ctrl.ClearSteps()
		return nil
	default:
		return &CommandError{Kind: ErrUnknownCommand, Message: "unknown command " + line.Name}
	}
}

func errResponse(err error) string {
	return "!0 Err: " + err.Error() + "\n\r"
}

func argInt32(args []string, i int, required bool) (int32, error) {
	if i >= len(args) || args[i] == "" {
		if required {
			return 0, &CommandError{Kind: ErrParameterOutsideLimit, Message: "missing parameter " + strconv.Itoa(i+1)}
		}
		return 0, nil
	}
	v, ok := parseInt32(args[i])
	if !ok {
		return 0, &CommandError{Kind: ErrParameterOutsideLimit, Message: "parameter " + strconv.Itoa(i+1) + " not a valid integer"}
	}
	return v, nil
}

func argUint32(args []string, i int, required bool) (uint32, error) {
	if i >= len(args) || args[i] == "" {
		if required {
			return 0, &CommandError{Kind: ErrParameterOutsideLimit, Message: "missing parameter " + strconv.Itoa(i+1)}
		}
		return 0, nil
	}
	v, ok := parseUint32(args[i])
	if !ok {
		return 0, &CommandError{Kind: ErrParameterOutsideLimit, Message: "parameter " + strconv.Itoa(i+1) + " not a valid integer"}
	}
	return v, nil
}

func (d *Dispatcher) handleEM(line *Line) error {
	e1, err := argUint32(line.Args, 0, true)
	if err != nil {
		return err
	}
	if d.ctrl.Config().LimitChecks && e1 > 5 {
		return &CommandError{Kind: ErrParameterOutsideLimit, Message: "<e1> out of range"}
	}
	e2, err := argUint32(line.Args, 1, false)
	if err != nil {
		return err
	}
	d.ctrl.EnableMotors(uint8(e1), uint8(e2))
	return nil
}

func (d *Dispatcher) handleSM(line *Line) error {
	dur, err := argUint32(line.Args, 0, true)
	if err != nil {
		return err
	}
	s1, err := argInt32(line.Args, 1, true)
	if err != nil {
		return err
	}
	s2, err := argInt32(line.Args, 2, false)
	if err != nil {
		return err
	}
	s3, err := argInt32(line.Args, 3, false)
	if err != nil {
		return err
	}

	if err := checkMoveRange(d.ctrl, dur, []int32{s1, s2, s3}); err != nil {
		return err
	}

	entry, err := planner.ConstantVelocity(dur, [motion.NumAxes]int32{s1, s2, s3})
	if err != nil {
		return translatePlannerErr(err)
	}
	d.ctrl.Submit(entry)
	return nil
}

func (d *Dispatcher) handleXM(line *Line) error {
	dur, err := argUint32(line.Args, 0, true)
	if err != nil {
		return err
	}
	a, err := argInt32(line.Args, 1, true)
	if err != nil {
		return err
	}
	b, err := argInt32(line.Args, 2, true)
	if err != nil {
		return err
	}
	if dur == 0 {
		return &CommandError{Kind: ErrParameterOutsideLimit, Message: "<move_duration> is zero"}
	}

	if err := checkMoveRange(d.ctrl, dur, []int32{a + b, a - b}); err != nil {
		return err
	}

	entry, err := planner.MixedAxis(dur, a, b)
	if err != nil {
		return translatePlannerErr(err)
	}
	d.ctrl.Submit(entry)
	return nil
}

func (d *Dispatcher) handleAM(line *Line) error {
	vi, err := argUint32(line.Args, 0, true)
	if err != nil {
		return err
	}
	vf, err := argUint32(line.Args, 1, true)
	if err != nil {
		return err
	}
	s1, err := argInt32(line.Args, 2, true)
	if err != nil {
		return err
	}
	s2, err := argInt32(line.Args, 3, true)
	if err != nil {
		return err
	}

	if d.ctrl.Config().LimitChecks {
		if vi > 25000 || vf > 25000 {
			return &CommandError{Kind: ErrVelocityOutOfRange, Message: "velocity larger than 25000"}
		}
		if vi < 4 || vf < 4 {
			return &CommandError{Kind: ErrVelocityOutOfRange, Message: "velocity less than 4"}
		}
	}
	if abs1, abs2 := absInt32(s1), absInt32(s2); uint32(abs1) > 0xFFFFFF || uint32(abs2) > 0xFFFFFF {
		return &CommandError{Kind: ErrStepsTooLarge, Message: "axis larger than 16777215 steps"}
	}

	entry, err := planner.Accelerated(uint16(vi), uint16(vf), s1, s2)
	if err != nil {
		return translatePlannerErr(err)
	}
	d.ctrl.Submit(entry)
	return nil
}

func (d *Dispatcher) handleLM(line *Line) error {
	var stepAdd [motion.NumAxes]uint32
	var stepAddInc [motion.NumAxes]int32
	var stepsRemaining [motion.NumAxes]int32

	for axis := 0; axis < 2; axis++ {
		base := axis * 3
		sa, err := argUint32(line.Args, base, true)
		if err != nil {
			return err
		}
		sc, err := argInt32(line.Args, base+1, true)
		if err != nil {
			return err
		}
		si, err := argInt32(line.Args, base+2, true)
		if err != nil {
			return err
		}
		stepAdd[axis] = sa
		stepAddInc[axis] = si
		stepsRemaining[axis] = sc
	}

	entry := planner.LowLevel(stepAdd, stepAddInc, stepsRemaining)
	if entry == nil {
		return nil
	}
	d.ctrl.Submit(entry)
	return nil
}

func (d *Dispatcher) handleHM(line *Line) error {
	rate, err := argUint32(line.Args, 0, true)
	if err != nil {
		return err
	}

	d.ctrl.WaitForEmpty()
	pos := d.ctrl.Position()

	legs, err := planner.Home(rate, pos)
	if err != nil {
		return translatePlannerErr(err)
	}
	for _, leg := range legs {
		entry, err := planner.ConstantVelocity(leg.DurationMs, leg.Steps)
		if err != nil {
			return translatePlannerErr(err)
		}
		d.ctrl.Submit(entry)
	}
	return nil
}

func (d *Dispatcher) handleES() string {
	r := d.ctrl.EStop()
	ci := 0
	if r.CommandInterrupted {
		ci = 1
	}
	return joinUint(ci, r.FifoSteps1, r.FifoSteps2, r.RemainingSteps1, r.RemainingSteps2) + "\n\r"
}

func (d *Dispatcher) handleQM() string {
	s := d.ctrl.QueryMotor()
	return "QM," + boolDigit(s.CommandExecuting) + "," + boolDigit(s.Motor1Moving) + "," +
		boolDigit(s.Motor2Moving) + "," + boolDigit(s.FifoNonEmpty) + "\n\r"
}

func (d *Dispatcher) handleQS() string {
	pos := d.ctrl.Position()
	return strconv.Itoa(int(pos[0])) + "," + strconv.Itoa(int(pos[1])) + "\n\r"
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func joinUint(ci int, vals ...uint32) string {
	out := strconv.Itoa(ci)
	for _, v := range vals {
		out += "," + strconv.FormatUint(uint64(v), 10)
	}
	return out
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func checkMoveRange(ctrl *controller.Controller, durationMs uint32, steps []int32) error {
	if !ctrl.Config().LimitChecks {
		return nil
	}
	maxRate := core.TickHz() / 1000 // one step per tick, in steps per ms
	for _, s := range steps {
		abs := s
		if abs < 0 {
			abs = -abs
		}
		if uint32(abs) > 0xFFFFFF {
			return &CommandError{Kind: ErrStepsTooLarge, Message: "axis larger than 16777215 steps"}
		}
		if durationMs > 0 && uint32(abs)/durationMs > maxRate {
			return &CommandError{Kind: ErrAxisRateTooHigh, Message: "axis step rate too high"}
		}
		if abs != 0 && durationMs/planner.MinStepPeriodMs >= uint32(abs) {
			return &CommandError{Kind: ErrAxisRateTooLow, Message: "axis step rate too low"}
		}
	}
	return nil
}

func translatePlannerErr(err error) error {
	switch err {
	case planner.ErrAxisRange:
		return &CommandError{Kind: ErrStepsTooLarge, Message: err.Error()}
	case planner.ErrZeroAcceleration:
		return &CommandError{Kind: ErrAccelerationZero, Message: err.Error()}
	case planner.ErrStepRateTooFast:
		return &CommandError{Kind: ErrAxisRateTooHigh, Message: err.Error()}
	default:
		return &CommandError{Kind: ErrParameterOutsideLimit, Message: err.Error()}
	}
}
