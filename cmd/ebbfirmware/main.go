//go:build rp2040 || rp2350

// Command ebbfirmware is the TinyGo entry point that runs the ASCII
// command-processor on a real RP2040/RP2350 board: USB CDC in, the motion
// core ticking the step generator, USB CDC out.
package main

import (
	"machine"
	"time"

	"ebbcore/config"
	"ebbcore/controller"
	"ebbcore/core"
	"ebbcore/frontend"
	"ebbcore/hal/tinygostep"
)

const hwTimerHz = 1000000 // RP2040/RP2350 free-running timer tick rate

func main() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	InitUSB()
	core.SetHardwareTimerFunc(GetHardwareTime)
	core.TimerInit()

	cfg := config.Default()
	ctrl, dispatcher := buildController(cfg)

	blinkStartup()

	var lineBuf []byte
	ticksPerHW := uint32(hwTimerHz) / cfg.TickHz
	if ticksPerHW == 0 {
		ticksPerHW = 1
	}
	lastHW := GetHardwareTime()

	for {
		func() {
			defer func() {
				recover() // keep the command loop alive after a bad command panics
			}()

			for USBAvailable() > 0 {
				b, err := USBRead()
				if err != nil {
					break
				}
				if b == '\r' || b == '\n' {
					if len(lineBuf) > 0 {
						resp := dispatcher.Handle(string(lineBuf))
						if resp != "" {
							USBWriteBytes([]byte(resp))
						}
						lineBuf = lineBuf[:0]
					}
					continue
				}
				lineBuf = append(lineBuf, b)
			}

			now := GetHardwareTime()
			for uint32(now-lastHW) >= ticksPerHW {
				ctrl.Tick()
				lastHW += ticksPerHW
			}

			core.ProcessTimers()
		}()

		time.Sleep(10 * time.Microsecond)
	}
}

// buildController wires the GPIO-addressed motor drivers, the RC-servo
// power rail, and a step-pulse emitter (PIO where available, otherwise
// plain GPIO toggling) into a fresh Controller.
func buildController(cfg *config.MachineConfig) (*controller.Controller, *frontend.Dispatcher) {
	core.SetGPIODriver(tinygostep.MachineGPIO{})

	for i, d := range cfg.Drivers {
		core.ConfigureMotorDriver(i, &core.MotorDriver{
			EnablePin:   pinFromName(d.EnablePin),
			MS1Pin:      pinFromName(d.MS1Pin),
			MS2Pin:      pinFromName(d.MS2Pin),
			MS3Pin:      pinFromName(d.MS3Pin),
			EnableLevel: false,
		})
	}
	if cfg.RCServoPowerPin != "" {
		core.ConfigureRCServoPower(pinFromName(cfg.RCServoPowerPin), core.TicksFromMS(cfg.RCServoReloadMs))
	}

	var pinouts [3]tinygostep.AxisPinout
	for i, d := range cfg.Drivers {
		pinouts[i] = tinygostep.AxisPinout{
			StepPin:  numFromName(d.StepPin),
			DirPin:   numFromName(d.DirPin),
			PIONum:   0,
			StateNum: uint8(i),
		}
	}

	emitter := newStepEmitter(pinouts)

	ctrlCfg := controller.Config{
		TickHz:      cfg.TickHz,
		FifoDepth:   cfg.FifoDepth,
		LimitChecks: cfg.LimitChecks,
		AckEnable:   cfg.AckEnable,
	}
	ctrl := controller.New(ctrlCfg, emitter)
	return ctrl, frontend.NewDispatcher(ctrl)
}

// blinkStartup flashes the onboard LED three times to signal a clean boot.
func blinkStartup() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < 3; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
}
