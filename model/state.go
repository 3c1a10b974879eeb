package model

import "time"

// RunStatus describes where a server is in its run lifecycle.
type RunStatus int

const (
	RunStatusNotInstalled RunStatus = iota
	RunStatusStopped
	RunStatusStarting
	RunStatusAvailable
	RunStatusStopping
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusStopped:
		return "stopped"
	case RunStatusStarting:
		return "starting"
	case RunStatusAvailable:
		return "available"
	case RunStatusStopping:
		return "stopping"
	default:
		return "not installed"
	}
}

// RunData is a snapshot of a running server process.
type RunData struct {
	PID         int32
	CPUUsage    float64
	MemoryUsage uint64
}

// MemoryDisplay returns the memory usage scaled to a human unit.
func (d RunData) MemoryDisplay() (uint64, string) {
	switch {
	case d.MemoryUsage < 1024:
		return d.MemoryUsage, "b"
	case d.MemoryUsage < 1024*1024:
		return d.MemoryUsage / 1024, "Kb"
	case d.MemoryUsage < 1024*1024*1024:
		return d.MemoryUsage / (1024 * 1024), "Mb"
	default:
		return d.MemoryUsage / (1024 * 1024 * 1024), "Gb"
	}
}

// RunState is the monitor's view of a server: its lifecycle status plus the
// latest process snapshot while it is available.
type RunState struct {
	Status RunStatus
	Data   RunData // valid when Status == RunStatusAvailable
}

// InstallStatus describes where a server is in its install lifecycle.
type InstallStatus int

const (
	InstallStatusNotInstalled InstallStatus = iota
	InstallStatusUpdateStarting
	InstallStatusDownloading
	InstallStatusVerifying
	InstallStatusValidating
	InstallStatusInstalled
	InstallStatusFailedValidation
)

// InstallState tracks the install/update lifecycle of a server.
type InstallState struct {
	Status      InstallStatus
	Progress    float64 // percent, for downloading/verifying
	Version     string  // binary timestamp, for installed
	InstallTime time.Time
	Error       string // for failed validation
}
