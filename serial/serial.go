// Package serial abstracts the host-side transport to a real EBB-class
// board: a byte stream plus flush, used by cmd/ebbhost's serial mode. The
// loopback mode of cmd/ebbhost does not go through Port; it calls a
// frontend.Dispatcher directly.
package serial

import "io"

// Port is a serial connection: read/write/close plus an explicit flush.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered output.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device is the OS device path (e.g. "/dev/ttyACM0", "COM3").
	Device string

	// Baud is the requested baud rate. USB CDC boards (including every
	// EBB board) ignore this, but some OS serial stacks still require a
	// value to open the port.
	Baud int

	// ReadTimeout, in milliseconds; 0 blocks forever.
	ReadTimeout int
}

// DefaultConfig returns the nominal EBB-class configuration for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        9600,
		ReadTimeout: 100,
	}
}
