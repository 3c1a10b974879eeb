package _const

// Timing constants
const (
	// Seconds between run-state samples of a launched server
	MonitorIntervalSeconds = 5

	// Seconds to wait for a graceful stop before killing the process
	StopGraceSeconds = 30

	// Seconds between mod update checks when none is configured
	DefaultModCheckIntervalSeconds = 3600
)
