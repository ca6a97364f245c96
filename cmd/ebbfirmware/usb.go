//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"
)

// InitUSB configures the board's USB CDC-ACM serial endpoint. TinyGo sets
// up the USB descriptors itself; this just brings machine.Serial online.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// USBAvailable returns the number of bytes buffered for reading.
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte.
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWriteBytes writes a full response, handling partial writes.
func USBWriteBytes(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}
