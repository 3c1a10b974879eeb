package mods

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	_const "ark_manager/internal/const"
	"ark_manager/internal/logger"
	"ark_manager/internal/steam"
)

// ModStatus describes how an installed mod compares to CurseForge.
type ModStatus int

const (
	StatusUpToDate ModStatus = iota
	StatusOutOfDate
	StatusRemoved
)

func (s ModStatus) String() string {
	switch s {
	case StatusOutOfDate:
		return "out of date"
	case StatusRemoved:
		return "removed"
	default:
		return "up to date"
	}
}

// InstalledMod is one mod found on disk. Mod directories are named
// <projectID>_<fileID> under the installation's CurseForge mods directory.
type InstalledMod struct {
	ServerID  uuid.UUID
	ProjectID int
	FileID    int
}

// ModState pairs a project with its update status.
type ModState struct {
	ProjectID int
	Name      string
	Status    ModStatus
}

// ServerModsStatus holds the mod statuses for one server.
type ServerModsStatus struct {
	ServerID    uuid.UUID
	ModStatuses []ModState
}

// Installation names one server installation to scan for mods.
type Installation struct {
	ServerID   uuid.UUID
	InstallDir string
}

// Checker resolves installed mod versions against the CurseForge proxy API.
type Checker struct {
	baseURL  string
	client   *http.Client
	store    *Store
	cacheAge time.Duration
	detector *steam.Detector
	logger   *logger.Logger
}

// NewChecker creates a checker. The store may be nil to disable caching.
func NewChecker(baseURL string, store *Store, cacheAge time.Duration, logger *logger.Logger) *Checker {
	if baseURL == "" {
		baseURL = _const.DefaultModAPIBaseURL
	}
	return &Checker{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
		store:    store,
		cacheAge: cacheAge,
		detector: steam.NewDetector(logger),
		logger:   logger,
	}
}

// ScanInstalledMods lists the mods present in each installation's mods
// directory. Entries that do not parse as <projectID>_<fileID> are skipped.
func (c *Checker) ScanInstalledMods(installations []Installation) []InstalledMod {
	var installed []InstalledMod
	for _, inst := range installations {
		modsDir := c.detector.GetServerModsPath(inst.InstallDir)
		dirEntries, err := os.ReadDir(modsDir)
		if err != nil {
			c.logger.Warn("Failed to read mods directory %s: %v", modsDir, err)
			continue
		}
		for _, entry := range dirEntries {
			projectID, fileID, ok := parseModDirName(entry.Name())
			if !ok {
				continue
			}
			installed = append(installed, InstalledMod{
				ServerID:  inst.ServerID,
				ProjectID: projectID,
				FileID:    fileID,
			})
		}
	}
	return installed
}

// CheckForUpdates scans the given installations and reports per-server mod
// statuses. A mod is out of date when CurseForge advertises a newer main
// file, and removed when the project no longer exists.
func (c *Checker) CheckForUpdates(ctx context.Context, installations []Installation) ([]ServerModsStatus, error) {
	installed := c.ScanInstalledMods(installations)
	if len(installed) == 0 {
		return nil, nil
	}

	projects, err := c.resolveProjects(ctx, uniqueProjectIDs(installed))
	if err != nil {
		return nil, err
	}

	var statuses []ServerModsStatus
	for _, mod := range installed {
		state := ModState{ProjectID: mod.ProjectID, Status: StatusRemoved}
		if project, ok := projects[mod.ProjectID]; ok {
			state.Name = project.Name
			if project.MainFileID > mod.FileID {
				state.Status = StatusOutOfDate
			} else {
				state.Status = StatusUpToDate
			}
		}

		found := false
		for i := range statuses {
			if statuses[i].ServerID == mod.ServerID {
				statuses[i].ModStatuses = append(statuses[i].ModStatuses, state)
				found = true
				break
			}
		}
		if !found {
			statuses = append(statuses, ServerModsStatus{
				ServerID:    mod.ServerID,
				ModStatuses: []ModState{state},
			})
		}
	}
	return statuses, nil
}

type project struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	MainFileID int    `json:"mainFileId"`
}

type projectsResponse struct {
	Data []project `json:"data"`
}

// resolveProjects returns project records keyed by id, serving from the cache
// where possible and querying the proxy API for the rest.
func (c *Checker) resolveProjects(ctx context.Context, projectIDs []int) (map[int]project, error) {
	projects := make(map[int]project)

	var missing []int
	for _, id := range projectIDs {
		if c.store != nil {
			cached, err := c.store.Get(id, c.cacheAge)
			if err != nil {
				c.logger.Warn("Mod cache lookup failed for project %d: %v", id, err)
			} else if cached != nil {
				projects[id] = project{ID: cached.ProjectID, Name: cached.Name, MainFileID: cached.MainFileID}
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return projects, nil
	}

	fetched, err := c.fetchProjects(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range fetched {
		projects[p.ID] = p
		if c.store != nil {
			if err := c.store.Put(p.ID, p.Name, p.MainFileID); err != nil {
				c.logger.Warn("Failed to cache project %d: %v", p.ID, err)
			}
		}
	}
	return projects, nil
}

func (c *Checker) fetchProjects(ctx context.Context, projectIDs []int) ([]project, error) {
	body, err := json.Marshal(map[string][]int{"modIds": projectIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mods request: %w", err)
	}

	url := c.baseURL + "/mods"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build mods request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Querying %s for %d projects", url, len(projectIDs))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query project statuses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mods API returned status %d", resp.StatusCode)
	}

	var decoded projectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode mods response: %w", err)
	}
	return decoded.Data, nil
}

// parseModDirName splits a <projectID>_<fileID> directory name. Both parts
// must be positive integers.
func parseModDirName(name string) (projectID, fileID int, ok bool) {
	parts := strings.Split(name, "_")
	if len(parts) != 2 {
		return 0, 0, false
	}
	projectID, err := strconv.Atoi(parts[0])
	if err != nil || projectID <= 0 {
		return 0, 0, false
	}
	fileID, err = strconv.Atoi(parts[1])
	if err != nil || fileID <= 0 {
		return 0, 0, false
	}
	return projectID, fileID, true
}

func uniqueProjectIDs(installed []InstalledMod) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, mod := range installed {
		if _, ok := seen[mod.ProjectID]; ok {
			continue
		}
		seen[mod.ProjectID] = struct{}{}
		ids = append(ids, mod.ProjectID)
	}
	return ids
}

// DefaultCacheAge is used when the configuration does not set an interval.
const DefaultCacheAge = time.Duration(_const.DefaultModCheckIntervalSeconds) * time.Second
