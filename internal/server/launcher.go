package server

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	_const "ark_manager/internal/const"
	"ark_manager/internal/logger"
	"ark_manager/model"
)

// Launcher starts and stops one server's process.
type Launcher struct {
	settings *model.ServerSettings
	logger   *logger.Logger
	cmd      *exec.Cmd
	mutex    sync.Mutex
}

// NewLauncher creates a launcher for the given server profile.
func NewLauncher(settings *model.ServerSettings, logger *logger.Logger) *Launcher {
	return &Launcher{
		settings: settings,
		logger:   logger,
	}
}

// BinaryPath returns the server executable inside the installation, choosing
// the API loader when the profile opts into it.
func BinaryPath(settings *model.ServerSettings, useServerAPI bool) string {
	rel := _const.ServerBinaryRelPath
	if useServerAPI {
		rel = _const.ServerAPIBinaryRelPath
	}
	return filepath.Join(settings.GetFullInstallationLocation(), filepath.FromSlash(rel))
}

// LogsPath returns the server's log directory inside the installation.
func LogsPath(settings *model.ServerSettings) string {
	return filepath.Join(settings.GetFullInstallationLocation(), filepath.FromSlash(_const.ServerLogsRelPath))
}

// Start spawns the server process with the given argument vector and returns
// its PID.
func (l *Launcher) Start(args []string, useServerAPI bool) (int32, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.cmd != nil && l.cmd.Process != nil {
		return 0, fmt.Errorf("server %s is already running", l.settings.Name)
	}

	exe := BinaryPath(l.settings, useServerAPI)
	if _, err := os.Stat(exe); os.IsNotExist(err) {
		return 0, fmt.Errorf("server executable not found: %s", exe)
	}

	l.logger.Info("Starting server %s: %s %v", l.settings.Name, exe, args)

	cmd := exec.Command(exe, args...)
	cmd.Dir = filepath.Dir(exe)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn server %s: %w", l.settings.Name, err)
	}
	l.cmd = cmd

	// Reap the process when it exits so Stop and restarts see a clean slate
	go func() {
		err := cmd.Wait()
		l.mutex.Lock()
		l.cmd = nil
		l.mutex.Unlock()
		if err != nil {
			l.logger.Warn("Server %s exited: %v", l.settings.Name, err)
		} else {
			l.logger.Info("Server %s exited", l.settings.Name)
		}
	}()

	return int32(cmd.Process.Pid), nil
}

// Stop terminates the server process.
func (l *Launcher) Stop() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.cmd == nil || l.cmd.Process == nil {
		return fmt.Errorf("server %s is not running", l.settings.Name)
	}

	l.logger.Info("Stopping server %s (pid %d)", l.settings.Name, l.cmd.Process.Pid)
	if err := l.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop server %s: %w", l.settings.Name, err)
	}
	return nil
}

// PID returns the running process id, or 0 when the server is not running.
func (l *Launcher) PID() int32 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.cmd == nil || l.cmd.Process == nil {
		return 0
	}
	return int32(l.cmd.Process.Pid)
}
