//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"ebbcore/core"
)

// RP2040/RP2350 Timer peripheral: a free-running 1MHz 64-bit counter.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareTime reads the low 32 bits of the microsecond counter.
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime feeds the hardware counter into core's software clock.
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
