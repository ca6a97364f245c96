package core

// Microstep resolutions selectable via MS1/MS2/MS3, matching the EM
// command's EA1 argument on EBB-class boards.
const (
	Microstep16 = 1
	Microstep8  = 2
	Microstep4  = 3
	Microstep2  = 4
	Microstep1  = 5
)

// msPins maps a microstep resolution to (MS1, MS2, MS3) pin levels.
var msPins = map[uint8][3]bool{
	Microstep16: {true, true, true},
	Microstep8:  {true, true, false},
	Microstep4:  {false, true, false},
	Microstep2:  {true, false, false},
	Microstep1:  {false, false, false},
}

// MotorDriver abstracts the motor-enable and microstep-select outputs for
// one axis driver, plus the shared RC-servo power rail both drivers sit on.
type MotorDriver struct {
	EnablePin   GPIOPin
	MS1Pin      GPIOPin
	MS2Pin      GPIOPin
	MS3Pin      GPIOPin
	EnableLevel bool // pin level that enables the driver (active-low on most drivers)
}

var (
	motorDrivers           [2]*MotorDriver
	rcServoPowerPin        GPIOPin
	rcServoPowerConfigured bool
	rcServoReloadTicks     uint32
	rcServoTimer           *Timer
	rcServoPending         bool
)

// ConfigureMotorDriver registers the enable/microstep pins for driver index
// (0 or 1). Call once at startup before EnableMotor/DisableMotor.
func ConfigureMotorDriver(index int, d *MotorDriver) {
	if index < 0 || index >= len(motorDrivers) {
		return
	}
	motorDrivers[index] = d
	gpio := MustGPIO()
	gpio.ConfigureOutput(d.EnablePin)
	gpio.ConfigureOutput(d.MS1Pin)
	gpio.ConfigureOutput(d.MS2Pin)
	gpio.ConfigureOutput(d.MS3Pin)
}

// ConfigureRCServoPower registers the shared RC-servo power-enable pin and
// the number of ticks the power stays on after the last refresh.
func ConfigureRCServoPower(pin GPIOPin, reloadTicks uint32) {
	rcServoPowerPin = pin
	rcServoReloadTicks = reloadTicks
	rcServoPowerConfigured = true
	MustGPIO().ConfigureOutput(pin)
}

// EnableMotor turns driver index on at the given microstep resolution and
// refreshes the RC-servo power-off deadline. microstep of 0 leaves the
// MS pins untouched (external step/dir driver with fixed microstepping).
func EnableMotor(index int, microstep uint8) {
	d := motorDrivers[index]
	if d == nil {
		return
	}
	gpio := MustGPIO()
	gpio.SetPin(d.EnablePin, d.EnableLevel)
	if levels, ok := msPins[microstep]; ok {
		gpio.SetPin(d.MS1Pin, levels[0])
		gpio.SetPin(d.MS2Pin, levels[1])
		gpio.SetPin(d.MS3Pin, levels[2])
	}
	refreshRCServoPower()
}

// DisableMotor turns driver index off.
func DisableMotor(index int) {
	d := motorDrivers[index]
	if d == nil {
		return
	}
	MustGPIO().SetPin(d.EnablePin, !d.EnableLevel)
}

// refreshRCServoPower turns the RC-servo power rail on and pushes out its
// power-off deadline by scheduling (or re-arming) a one-shot core.Timer,
// mirroring the gRCServoPoweroffCounterMS reload behavior.
func refreshRCServoPower() {
	if !rcServoPowerConfigured {
		return
	}
	MustGPIO().SetPin(rcServoPowerPin, true)

	wake := GetTime() + rcServoReloadTicks
	if rcServoTimer == nil {
		rcServoTimer = &Timer{Handler: rcServoPowerOff}
	}
	rcServoTimer.WakeTime = wake
	if !rcServoPending {
		rcServoPending = true
		ScheduleTimer(rcServoTimer)
	}
}

// rcServoPowerOff is rcServoTimer's handler: it drops RC-servo power unless
// a later refreshRCServoPower call has since pushed the deadline forward.
func rcServoPowerOff(t *Timer) uint8 {
	rcServoPending = false
	if int32(GetTime()-t.WakeTime) < 0 {
		// refreshRCServoPower moved the deadline out after this fired late;
		// the WakeTime field already reflects the new target, reschedule.
		rcServoPending = true
		return SF_RESCHEDULE
	}
	MustGPIO().SetPin(rcServoPowerPin, false)
	return SF_DONE
}
