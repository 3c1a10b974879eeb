// Package manager ties the subsystems together: server profiles, the
// configuration schema, installation, launching, monitoring, and mods.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ark_manager/config"
	_const "ark_manager/internal/const"
	"ark_manager/internal/gameconfig"
	"ark_manager/internal/logger"
	"ark_manager/internal/logmonitor"
	"ark_manager/internal/mods"
	"ark_manager/internal/rcon"
	"ark_manager/internal/server"
	"ark_manager/internal/steamcmd"
	"ark_manager/model"
)

// Manager is the top-level coordinator for all managed servers.
type Manager struct {
	config   *config.Config
	logger   *logger.Logger
	metadata *gameconfig.MetadataState
	steamCmd *steamcmd.Client
	monitor  *server.Monitor
	modStore *mods.Store
	checker  *mods.Checker

	servers     map[uuid.UUID]*model.ServerSettings
	launchers   map[uuid.UUID]*server.Launcher
	runStates   map[uuid.UUID]model.RunState
	logMonitors map[uuid.UUID]*logmonitor.Monitor
	mutex       sync.Mutex
}

// New loads the schema and existing profiles and wires the subsystems.
func New(cfg *config.Config, log *logger.Logger) (*Manager, error) {
	builtIn, err := gameconfig.LoadBuiltInMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in schema: %w", err)
	}

	userPath, err := cfg.UserMetadataPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate user schema: %w", err)
	}
	user, err := gameconfig.LoadUserMetadata(userPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load user schema: %w", err)
	}

	m := &Manager{
		config:      cfg,
		logger:      log,
		metadata:    gameconfig.NewMetadataState(builtIn, user, log),
		steamCmd:    steamcmd.New(cfg.SteamCmdDirectory, log),
		servers:     make(map[uuid.UUID]*model.ServerSettings),
		launchers:   make(map[uuid.UUID]*server.Launcher),
		runStates:   make(map[uuid.UUID]model.RunState),
		logMonitors: make(map[uuid.UUID]*logmonitor.Monitor),
	}

	m.monitor = server.NewMonitor(log, _const.MonitorIntervalSeconds*time.Second, m.onRunState)

	if cfg.Mods.Enabled {
		m.modStore = mods.NewStore(cfg.Mods.CacheDatabase, log)
		if err := m.modStore.Initialize(); err != nil {
			log.Warn("Mod cache unavailable: %v", err)
			m.modStore = nil
		}
		cacheAge := mods.DefaultCacheAge
		if cfg.Mods.CheckInterval > 0 {
			cacheAge = time.Duration(cfg.Mods.CheckInterval) * time.Second
		}
		m.checker = mods.NewChecker(cfg.Mods.APIBaseURL, m.modStore, cacheAge, log)
	}

	profiles, errs := config.LoadServerProfiles(cfg.ProfilesDirectory)
	for _, err := range errs {
		log.Warn("Skipping profile: %v", err)
	}
	for _, profile := range profiles {
		m.servers[profile.ID] = profile
		m.runStates[profile.ID] = model.RunState{Status: model.RunStatusStopped}
	}
	log.Info("Loaded %d server profiles", len(profiles))

	return m, nil
}

// Metadata returns the schema state shared by all servers.
func (m *Manager) Metadata() *gameconfig.MetadataState {
	return m.metadata
}

// Servers returns a snapshot of all known server profiles.
func (m *Manager) Servers() []*model.ServerSettings {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	servers := make([]*model.ServerSettings, 0, len(m.servers))
	for _, s := range m.servers {
		servers = append(servers, s)
	}
	return servers
}

// Server looks a profile up by id.
func (m *Manager) Server(id uuid.UUID) (*model.ServerSettings, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	s, ok := m.servers[id]
	if !ok {
		return nil, fmt.Errorf("unknown server %s", id)
	}
	return s, nil
}

// FindServerByName looks a profile up by its display name.
func (m *Manager) FindServerByName(name string) (*model.ServerSettings, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, s := range m.servers {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown server %q", name)
}

// CreateServer registers a new empty profile and persists it.
func (m *Manager) CreateServer(name, installDir string) (*model.ServerSettings, error) {
	settings := &model.ServerSettings{
		ID:                   uuid.New(),
		Name:                 name,
		InstallationLocation: installDir,
	}
	if err := m.addServer(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ImportServer builds a profile from an existing installation and persists it.
func (m *Manager) ImportServer(installDir string, importINIs bool) (*model.ServerSettings, error) {
	settings, err := server.ImportServerSettings(m.metadata.Effective(), installDir, importINIs, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to import server from %s: %w", installDir, err)
	}
	if err := m.addServer(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (m *Manager) addServer(settings *model.ServerSettings) error {
	if err := config.SaveServerProfile(m.config.ProfilesDirectory, settings); err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", settings.Name, err)
	}
	m.mutex.Lock()
	m.servers[settings.ID] = settings
	m.runStates[settings.ID] = model.RunState{Status: model.RunStatusStopped}
	m.mutex.Unlock()
	m.logger.Info("Registered server %s (%s)", settings.Name, settings.ID)
	return nil
}

// SaveServer persists a profile after its settings changed.
func (m *Manager) SaveServer(settings *model.ServerSettings) error {
	return config.SaveServerProfile(m.config.ProfilesDirectory, settings)
}

// WriteINIs flushes a server's configuration overrides into its INI files.
func (m *Manager) WriteINIs(settings *model.ServerSettings) error {
	return gameconfig.UpdateINIs(
		m.metadata.Effective(),
		&settings.ConfigEntries,
		settings.GetFullInstallationLocation(),
		settings.AllowExternalIniManagement,
		m.logger,
	)
}

// CommandLine renders the argument vector a server would launch with.
func (m *Manager) CommandLine(settings *model.ServerSettings) ([]string, error) {
	return server.GenerateCommandLine(m.metadata, settings)
}

// StartServer writes the server's INIs, launches it, and begins monitoring.
func (m *Manager) StartServer(settings *model.ServerSettings, useServerAPI bool) error {
	if err := m.WriteINIs(settings); err != nil {
		return fmt.Errorf("failed to write config for %s: %w", settings.Name, err)
	}

	args, err := m.CommandLine(settings)
	if err != nil {
		return fmt.Errorf("failed to build command line for %s: %w", settings.Name, err)
	}

	m.mutex.Lock()
	launcher, ok := m.launchers[settings.ID]
	if !ok {
		launcher = server.NewLauncher(settings, m.logger)
		m.launchers[settings.ID] = launcher
	}
	m.mutex.Unlock()

	pid, err := launcher.Start(args, useServerAPI)
	if err != nil {
		return err
	}

	m.monitor.Watch(settings.ID, pid)
	m.startLogMonitor(settings)
	return nil
}

// StopServer asks the server to exit over RCON and kills it if it is still
// up after the grace period.
func (m *Manager) StopServer(ctx context.Context, settings *model.ServerSettings) error {
	m.mutex.Lock()
	launcher, ok := m.launchers[settings.ID]
	m.mutex.Unlock()
	if !ok {
		return fmt.Errorf("server %s is not running", settings.Name)
	}

	m.onRunState(settings.ID, model.RunState{Status: model.RunStatusStopping})

	if err := m.requestExit(ctx, settings); err != nil {
		m.logger.Warn("Graceful shutdown of %s failed, killing: %v", settings.Name, err)
		return launcher.Stop()
	}

	deadline := time.Now().Add(_const.StopGraceSeconds * time.Second)
	for time.Now().Before(deadline) {
		if launcher.PID() == 0 {
			m.stopLogMonitor(settings.ID)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	m.logger.Warn("Server %s did not exit within grace period, killing", settings.Name)
	return launcher.Stop()
}

// requestExit saves the world and issues DoExit over the server's RCON port.
func (m *Manager) requestExit(ctx context.Context, settings *model.ServerSettings) error {
	address, password, err := m.rconEndpoint(settings)
	if err != nil {
		return err
	}

	conn, err := rcon.Connect(ctx, address, password)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	if _, err := conn.Command("SaveWorld"); err != nil {
		m.logger.Warn("SaveWorld failed for %s: %v", settings.Name, err)
	}
	_, err = conn.Command("DoExit")
	return err
}

// RunCommand executes an arbitrary admin command over RCON.
func (m *Manager) RunCommand(ctx context.Context, settings *model.ServerSettings, command string) (string, error) {
	address, password, err := m.rconEndpoint(settings)
	if err != nil {
		return "", err
	}

	conn, err := rcon.Connect(ctx, address, password)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	return conn.Command(command)
}

// Players lists the server's connected players over RCON.
func (m *Manager) Players(ctx context.Context, settings *model.ServerSettings) ([]rcon.PlayerEntry, error) {
	address, password, err := m.rconEndpoint(settings)
	if err != nil {
		return nil, err
	}

	conn, err := rcon.Connect(ctx, address, password)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	return conn.ListPlayers()
}

// rconEndpoint resolves the server's RCON address and admin password from
// its configuration overrides, falling back to schema defaults.
func (m *Manager) rconEndpoint(settings *model.ServerSettings) (address, password string, err error) {
	serverSettings := gameconfig.IniLocation(gameconfig.IniFileGameUserSettings, gameconfig.SectionServerSettings)

	enabled, ok := settings.ConfigEntries.TryBool("RCONEnabled", serverSettings)
	if ok && !enabled {
		return "", "", fmt.Errorf("rcon is disabled for server %s", settings.Name)
	}

	port := int64(_const.DefaultRconPort)
	if p, ok := settings.ConfigEntries.TryInt("RCONPort", serverSettings); ok {
		port = p
	}

	password, ok = settings.ConfigEntries.TryString("ServerAdminPassword", serverSettings)
	if !ok || password == "" {
		return "", "", fmt.Errorf("server %s has no admin password configured", settings.Name)
	}

	return fmt.Sprintf("127.0.0.1:%d", port), password, nil
}

// InstallServer runs steamcmd to install or update a server.
func (m *Manager) InstallServer(ctx context.Context, settings *model.ServerSettings, validate bool, progress steamcmd.ProgressCallback) error {
	appID := m.config.AppID
	if appID == "" {
		appID = _const.ArkServerAppID
	}
	mode := steamcmd.ModeUpdate
	if validate {
		mode = steamcmd.ModeValidate
	}
	return m.steamCmd.UpdateServer(ctx, settings.GetFullInstallationLocation(), appID, mode, progress)
}

// InstallState inspects a server's installation on disk.
func (m *Manager) InstallState(settings *model.ServerSettings) model.InstallState {
	appID := m.config.AppID
	if appID == "" {
		appID = _const.ArkServerAppID
	}
	return steamcmd.ValidateInstall(settings.GetFullInstallationLocation(), appID, _const.ServerBinaryRelPath)
}

// RunState returns the latest observed run state for a server.
func (m *Manager) RunState(id uuid.UUID) model.RunState {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.runStates[id]
}

// CheckMods reports the mod update status of every known server.
func (m *Manager) CheckMods(ctx context.Context) ([]mods.ServerModsStatus, error) {
	if m.checker == nil {
		return nil, fmt.Errorf("mod checks are disabled")
	}

	m.mutex.Lock()
	installations := make([]mods.Installation, 0, len(m.servers))
	for _, s := range m.servers {
		installations = append(installations, mods.Installation{
			ServerID:   s.ID,
			InstallDir: s.GetFullInstallationLocation(),
		})
	}
	m.mutex.Unlock()

	return m.checker.CheckForUpdates(ctx, installations)
}

// Shutdown stops monitoring and releases resources. Running servers are left
// running; they belong to the operator, not to this process.
func (m *Manager) Shutdown() {
	m.monitor.Stop()
	m.mutex.Lock()
	for id, lm := range m.logMonitors {
		lm.Stop()
		delete(m.logMonitors, id)
	}
	m.mutex.Unlock()
	if m.modStore != nil {
		m.modStore.Close()
	}
	m.logger.Info("Manager shut down")
}

func (m *Manager) onRunState(serverID uuid.UUID, state model.RunState) {
	m.mutex.Lock()
	previous := m.runStates[serverID]
	m.runStates[serverID] = state
	name := serverID.String()
	if s, ok := m.servers[serverID]; ok {
		name = s.Name
	}
	m.mutex.Unlock()

	if state.Status != previous.Status {
		m.logger.Info("Server %s is now %s", name, state.Status)
	}
	if state.Status == model.RunStatusStopped {
		m.stopLogMonitor(serverID)
	}
}

func (m *Manager) startLogMonitor(settings *model.ServerSettings) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.logMonitors[settings.ID]; ok {
		return
	}

	logsPath := server.LogsPath(settings)
	lm := logmonitor.New(logsPath, m.logger, func(filename string, lines []string) {
		for _, line := range lines {
			m.logger.Debug("[%s] %s: %s", settings.Name, filename, line)
		}
	})
	if err := lm.Start(); err != nil {
		m.logger.Warn("Failed to monitor logs for %s: %v", settings.Name, err)
		return
	}
	m.logMonitors[settings.ID] = lm
}

func (m *Manager) stopLogMonitor(id uuid.UUID) {
	m.mutex.Lock()
	lm, ok := m.logMonitors[id]
	if ok {
		delete(m.logMonitors, id)
	}
	m.mutex.Unlock()
	if ok {
		lm.Stop()
	}
}
