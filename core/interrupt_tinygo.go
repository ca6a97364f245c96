//go:build tinygo

package core

import "runtime/interrupt"

// IRQState is the token returned by DisableInterrupts and consumed by
// RestoreInterrupts.
type IRQState = interrupt.State

// disableInterrupts disables interrupts and returns the previous state.
func disableInterrupts() IRQState {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state.
func restoreInterrupts(state IRQState) {
	interrupt.Restore(state)
}

// DisableInterrupts is the exported form used outside package core.
func DisableInterrupts() IRQState {
	return disableInterrupts()
}

// RestoreInterrupts is the exported form used outside package core.
func RestoreInterrupts(state IRQState) {
	restoreInterrupts(state)
}
