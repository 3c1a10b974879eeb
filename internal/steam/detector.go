package steam

import (
	"os"
	"path/filepath"
	"runtime"

	_const "ark_manager/internal/const"
	"ark_manager/internal/logger"
)

type Detector struct {
	logger *logger.Logger
}

func NewDetector(logger *logger.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// DetectSteamCmdDirectory attempts to find an existing steamcmd installation
func (d *Detector) DetectSteamCmdDirectory() string {
	d.logger.Info("Detecting steamcmd installation directory...")

	var commonPaths []string

	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			filepath.Join(os.Getenv("PROGRAMFILES(X86)"), "SteamCMD"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "SteamCMD"),
			`C:\SteamCMD`,
			`C:\steamcmd`,
			`D:\SteamCMD`,
		}
	default:
		homeDir, _ := os.UserHomeDir()
		commonPaths = []string{
			filepath.Join(homeDir, "steamcmd"),
			filepath.Join(homeDir, ".steam", "steamcmd"),
			"/usr/games/steamcmd",
			"/opt/steamcmd",
		}
	}

	for _, path := range commonPaths {
		if d.isValidSteamCmdDirectory(path) {
			d.logger.Info("steamcmd directory found: %s", path)
			return path
		}
	}

	d.logger.Warn("steamcmd not found in common locations")
	return ""
}

// isValidSteamCmdDirectory checks if the given path holds a steamcmd install
func (d *Detector) isValidSteamCmdDirectory(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}

	var steamCmdExe string
	switch runtime.GOOS {
	case "windows":
		steamCmdExe = "steamcmd.exe"
	default:
		steamCmdExe = "steamcmd.sh"
	}

	exePath := filepath.Join(path, steamCmdExe)
	if _, err := os.Stat(exePath); os.IsNotExist(err) {
		return false
	}

	return true
}

// GetServerBinaryPath returns the server executable inside an installation
func (d *Detector) GetServerBinaryPath(installDir string) string {
	return filepath.Join(installDir, filepath.FromSlash(_const.ServerBinaryRelPath))
}

// GetServerLogsPath returns the server logs directory inside an installation
func (d *Detector) GetServerLogsPath(installDir string) string {
	return filepath.Join(installDir, filepath.FromSlash(_const.ServerLogsRelPath))
}

// GetServerModsPath returns the CurseForge mods directory inside an installation
func (d *Detector) GetServerModsPath(installDir string) string {
	return filepath.Join(installDir, filepath.FromSlash(_const.ServerModsRelPath), _const.CurseForgeAppID)
}

// IsServerInstalled checks if the server binary is present in an installation
func (d *Detector) IsServerInstalled(installDir string) bool {
	binaryPath := d.GetServerBinaryPath(installDir)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		d.logger.Debug("Server executable not found: %s", binaryPath)
		return false
	}

	d.logger.Debug("Server is installed at: %s", installDir)
	return true
}

// IsLogsDirectoryAvailable checks if the server logs directory exists
func (d *Detector) IsLogsDirectoryAvailable(installDir string) bool {
	logsPath := d.GetServerLogsPath(installDir)
	if _, err := os.Stat(logsPath); os.IsNotExist(err) {
		d.logger.Debug("Server logs directory not found: %s", logsPath)
		return false
	}

	d.logger.Debug("Server logs directory found: %s", logsPath)
	return true
}
