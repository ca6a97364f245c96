package core

// DefaultTickHz is the nominal step-generator tick rate for an EBB-class
// board: 25,000 ticks/second.
const DefaultTickHz = 25000

var (
	tickHz      uint32 = DefaultTickHz
	systemTicks uint32
	bootTicks   uint64 // Tick count at boot, for uptime calculation
)

// SetTickHz configures the tick rate used by TicksFromMS/TicksToMS.
// Must be called before any motion is planned; defaults to DefaultTickHz.
func SetTickHz(hz uint32) {
	tickHz = hz
}

// TickHz returns the configured tick rate.
func TickHz() uint32 {
	return tickHz
}

// GetTime returns the current system time in ticks.
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/host-loopback integration).
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns the uptime in ticks since boot.
func GetUptime() uint64 {
	return uint64(GetTime()) - bootTicks
}

// TicksFromMS converts milliseconds to ticks at the configured tick rate.
func TicksFromMS(ms uint32) uint32 {
	return (ms * tickHz) / 1000
}

// TicksToMS converts ticks to milliseconds at the configured tick rate.
func TicksToMS(ticks uint32) uint32 {
	return (ticks * 1000) / tickHz
}

// TimerInit initializes the system timer/tick source.
func TimerInit() {
	bootTicks = uint64(GetTime())
}

// ProcessTimers advances the current time and dispatches due timers.
// cmd/ebbfirmware calls this on every pass of its main loop; the host
// loopback tick goroutine in cmd/ebbhost does not call it.
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
