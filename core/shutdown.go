package core

import "sync/atomic"

// shutdownFlag and shutdownReason track a latched firmware shutdown state.
var (
	shutdownFlag   uint32 // atomic bool
	shutdownReason string
)

// TryShutdown latches a firmware shutdown with a reason. It is idempotent:
// the first caller's reason wins.
func TryShutdown(reason string) {
	if atomic.CompareAndSwapUint32(&shutdownFlag, 0, 1) {
		shutdownReason = reason
		DebugPrintln("[SHUTDOWN] " + reason)
	}
}

// IsShutdown reports whether TryShutdown has latched.
func IsShutdown() bool {
	return atomic.LoadUint32(&shutdownFlag) != 0
}

// ShutdownReason returns the latched reason, or "" if not shut down.
func ShutdownReason() string {
	return shutdownReason
}

// ClearShutdown resets shutdown state (used when re-arming after an EStop
// recovery or in tests).
func ClearShutdown() {
	atomic.StoreUint32(&shutdownFlag, 0)
	shutdownReason = ""
}
