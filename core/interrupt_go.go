//go:build !tinygo

package core

import "sync"

// IRQState is the token returned by DisableInterrupts and consumed by
// RestoreInterrupts.
type IRQState struct{}

// interruptMu stands in for the hardware interrupt mask on regular Go.
// The tick driver that calls motion.Generator.Tick holds this for the
// duration of each tick, the same way a real MCU ISR runs with interrupts
// masked; foreground code (EStop, QM/QS) takes it to get a consistent
// snapshot of state the tick goroutine also touches.
var interruptMu sync.Mutex

// disableInterrupts masks the tick for the calling goroutine.
func disableInterrupts() IRQState {
	interruptMu.Lock()
	return IRQState{}
}

// restoreInterrupts unmasks the tick.
func restoreInterrupts(_ IRQState) {
	interruptMu.Unlock()
}

// DisableInterrupts is the exported form used outside package core.
func DisableInterrupts() IRQState {
	return disableInterrupts()
}

// RestoreInterrupts is the exported form used outside package core.
func RestoreInterrupts(state IRQState) {
	restoreInterrupts(state)
}
