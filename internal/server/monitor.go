package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"

	"ark_manager/internal/logger"
	"ark_manager/model"
)

// RunStateCallback receives every run-state transition and sample.
type RunStateCallback func(serverID uuid.UUID, state model.RunState)

// Monitor samples a launched server process and reports run-state
// transitions: Starting until the process responds to sampling, Available
// with CPU/memory snapshots while it runs, Stopped once it is gone.
type Monitor struct {
	logger   *logger.Logger
	interval time.Duration
	callback RunStateCallback
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewMonitor creates a run-state monitor.
func NewMonitor(logger *logger.Logger, interval time.Duration, callback RunStateCallback) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		logger:   logger,
		interval: interval,
		callback: callback,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch follows the given PID until the process exits or the monitor stops.
func (m *Monitor) Watch(serverID uuid.UUID, pid int32) {
	m.callback(serverID, model.RunState{Status: model.RunStatusStarting})
	m.wg.Add(1)
	go m.watchLoop(serverID, pid)
}

// Stop cancels all watches and waits for them to finish.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) watchLoop(serverID uuid.UUID, pid int32) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			proc, err := process.NewProcess(pid)
			if err != nil {
				m.logger.Debug("Server %s process %d is gone", serverID, pid)
				m.callback(serverID, model.RunState{Status: model.RunStatusStopped})
				return
			}
			running, err := proc.IsRunning()
			if err != nil || !running {
				m.callback(serverID, model.RunState{Status: model.RunStatusStopped})
				return
			}

			data := model.RunData{PID: pid}
			if cpu, err := proc.CPUPercent(); err == nil {
				data.CPUUsage = cpu
			} else {
				m.logger.Warn("Failed to sample CPU for pid %d: %v", pid, err)
			}
			if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
				data.MemoryUsage = memInfo.RSS
			} else if err != nil {
				m.logger.Warn("Failed to sample memory for pid %d: %v", pid, err)
			}

			m.callback(serverID, model.RunState{Status: model.RunStatusAvailable, Data: data})
		}
	}
}
