// Package config loads the JSON machine configuration: tick rate, FIFO
// depth, limit-check policy and the per-axis/driver pin assignments.
package config

import "encoding/json"

// AxisPins names the GPIO pins (by the platform's own naming scheme, e.g.
// "gpio0" or "PA3") a single stepper driver uses.
type AxisPins struct {
	EnablePin string `json:"enable_pin"`
	MS1Pin    string `json:"ms1_pin"`
	MS2Pin    string `json:"ms2_pin"`
	MS3Pin    string `json:"ms3_pin"`
	StepPin   string `json:"step_pin"`
	DirPin    string `json:"dir_pin"`
}

// MachineConfig is the full JSON-configurable surface of the controller.
type MachineConfig struct {
	TickHz      uint32 `json:"tick_hz"`
	FifoDepth   int    `json:"fifo_depth"`
	LimitChecks bool   `json:"limit_checks"`
	AckEnable   bool   `json:"ack_enable"`

	Drivers [2]AxisPins `json:"drivers"`

	RCServoPowerPin    string `json:"rc_servo_power_pin"`
	RCServoReloadMs    uint32 `json:"rc_servo_reload_ms"`
}

// Load parses a JSON configuration document and fills in defaults for
// anything left unset.
func Load(data []byte) (*MachineConfig, error) {
	cfg := MachineConfig{LimitChecks: true, AckEnable: true}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *MachineConfig) {
	if cfg.TickHz == 0 {
		cfg.TickHz = 25000
	}
	if cfg.FifoDepth == 0 {
		cfg.FifoDepth = 2
	}
	if cfg.RCServoReloadMs == 0 {
		cfg.RCServoReloadMs = 10000
	}
}

// Default returns the nominal single-board EBB-class configuration.
func Default() *MachineConfig {
	return &MachineConfig{
		TickHz:      25000,
		FifoDepth:   2,
		LimitChecks: true,
		AckEnable:   true,
		Drivers: [2]AxisPins{
			{EnablePin: "gpio8", MS1Pin: "gpio9", MS2Pin: "gpio10", MS3Pin: "gpio11", StepPin: "gpio0", DirPin: "gpio1"},
			{EnablePin: "gpio8", MS1Pin: "gpio9", MS2Pin: "gpio10", MS3Pin: "gpio11", StepPin: "gpio2", DirPin: "gpio3"},
		},
		RCServoPowerPin: "gpio12",
		RCServoReloadMs: 10000,
	}
}
