package steamcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	"ark_manager/internal/logger"
	"ark_manager/model"
)

// UpdateMode selects between downloading updates and verifying files.
type UpdateMode int

const (
	ModeUpdate UpdateMode = iota
	ModeValidate
)

// ProgressCallback receives install-state transitions while steamcmd runs.
type ProgressCallback func(state model.InstallState)

// steamcmd reports progress as hex state codes on stdout:
//
//	Update state (0x61) downloading, progress: 99.76 (9475446175 / 9498529183)
//	Update state (0x81) verifying update, progress: 7.18 (681966749 / 9498529183)
var progressPattern = regexp.MustCompile(`Update state \(0x(?P<state>[0-9a-fA-F]+)\) (?P<desc>[^,]*), progress: (?P<percent>[0-9.]+)`)

const (
	stateDownloading = 0x61
	stateVerifying   = 0x81
)

// Client drives a steamcmd installation.
type Client struct {
	steamCmdDir string
	logger      *logger.Logger
}

// New creates a steamcmd client rooted at the given directory.
func New(steamCmdDir string, logger *logger.Logger) *Client {
	return &Client{steamCmdDir: steamCmdDir, logger: logger}
}

// Executable returns the steamcmd binary path for this platform.
func (c *Client) Executable() string {
	name := "steamcmd.sh"
	if runtime.GOOS == "windows" {
		name = "steamcmd.exe"
	}
	return filepath.Join(c.steamCmdDir, name)
}

// UpdateServer runs steamcmd to install, update, or validate a server
// installation, streaming parsed progress through the callback.
//
// steamcmd is ill-behaved about flushing, so progress arrives in bursts; the
// scanner still picks up every state line eventually.
func (c *Client) UpdateServer(ctx context.Context, installDir, appID string, mode UpdateMode, progress ProgressCallback) error {
	args := []string{
		"+force_install_dir", installDir,
		"+login", "anonymous",
	}
	switch mode {
	case ModeValidate:
		args = append(args, "+app_update", appID, "validate")
	default:
		args = append(args, "+app_update", appID)
	}
	args = append(args, "+quit")

	cmd := exec.CommandContext(ctx, c.Executable(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to pipe steamcmd output: %w", err)
	}

	c.logger.Info("Running steamcmd for app %s into %s", appID, installDir)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start steamcmd: %w", err)
	}

	if progress != nil {
		progress(model.InstallState{Status: model.InstallStatusUpdateStarting})
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		match := progressPattern.FindStringSubmatch(line)
		if match == nil {
			c.logger.Debug("steamcmd: %s", line)
			continue
		}
		state, err := strconv.ParseUint(match[1], 16, 64)
		if err != nil {
			continue
		}
		percent, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			continue
		}
		switch state {
		case stateDownloading:
			c.logger.Debug("steamcmd: downloading %.2f%%", percent)
			if progress != nil {
				progress(model.InstallState{Status: model.InstallStatusDownloading, Progress: percent})
			}
		case stateVerifying:
			c.logger.Debug("steamcmd: verifying %.2f%%", percent)
			if progress != nil {
				progress(model.InstallState{Status: model.InstallStatusVerifying, Progress: percent})
			}
		default:
			c.logger.Warn("steamcmd: unknown state 0x%x (%s)", state, match[2])
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("steamcmd failed: %w", err)
	}
	return nil
}

// appmanifest StateFlags value for a fully installed app
const stateInstallSuccessful = 4

var stateFlagsPattern = regexp.MustCompile(`StateFlags[^0-9]+(?P<state>[0-9]+)`)

// ValidateInstall inspects an installation's appmanifest and server binary
// and reports its install state without running steamcmd.
func ValidateInstall(installDir, appID, binaryRelPath string) model.InstallState {
	manifestPath := filepath.Join(installDir, "steamapps", fmt.Sprintf("appmanifest_%s.acf", appID))
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return model.InstallState{Status: model.InstallStatusNotInstalled}
	}

	match := stateFlagsPattern.FindStringSubmatch(string(content))
	if match == nil {
		return model.InstallState{Status: model.InstallStatusNotInstalled}
	}
	flags, err := strconv.ParseUint(match[1], 10, 32)
	if err != nil || flags != stateInstallSuccessful {
		return model.InstallState{
			Status: model.InstallStatusFailedValidation,
			Error:  fmt.Sprintf("incomplete install (state = %s)", match[1]),
		}
	}

	binaryPath := filepath.Join(installDir, filepath.FromSlash(binaryRelPath))
	info, err := os.Stat(binaryPath)
	if err != nil {
		return model.InstallState{Status: model.InstallStatusNotInstalled}
	}

	return model.InstallState{
		Status:      model.InstallStatusInstalled,
		Version:     info.ModTime().Format("2006-01-02 15:04:05"),
		InstallTime: info.ModTime(),
	}
}
