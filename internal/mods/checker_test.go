package mods

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	_const "ark_manager/internal/const"
	"ark_manager/internal/logger"
)

func TestParseModDirName(t *testing.T) {
	tests := []struct {
		name      string
		projectID int
		fileID    int
		ok        bool
	}{
		{"927090_5384957", 927090, 5384957, true},
		{"927090", 0, 0, false},
		{"927090_5384957_extra", 0, 0, false},
		{"abc_123", 0, 0, false},
		{"0_123", 0, 0, false},
		{"927090_-1", 0, 0, false},
	}
	for _, tt := range tests {
		projectID, fileID, ok := parseModDirName(tt.name)
		if projectID != tt.projectID || fileID != tt.fileID || ok != tt.ok {
			t.Fatalf("parseModDirName(%q) = %d, %d, %v; want %d, %d, %v",
				tt.name, projectID, fileID, ok, tt.projectID, tt.fileID, tt.ok)
		}
	}
}

// seedModsDir creates an installation with mod directories named
// <projectID>_<fileID> in the expected location.
func seedModsDir(t *testing.T, installDir string, names ...string) {
	t.Helper()
	modsDir := filepath.Join(installDir, filepath.FromSlash(_const.ServerModsRelPath), _const.CurseForgeAppID)
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(modsDir, name), 0755); err != nil {
			t.Fatalf("Failed to seed mods directory: %v", err)
		}
	}
}

func TestScanInstalledMods(t *testing.T) {
	installDir := t.TempDir()
	seedModsDir(t, installDir, "927090_100", "893657_200", "not-a-mod")

	checker := NewChecker("http://unused", nil, time.Hour, logger.New())
	serverID := uuid.New()
	installed := checker.ScanInstalledMods([]Installation{{ServerID: serverID, InstallDir: installDir}})

	if len(installed) != 2 {
		t.Fatalf("Expected 2 installed mods, got %d", len(installed))
	}
	for _, mod := range installed {
		if mod.ServerID != serverID {
			t.Fatalf("Wrong server id on %+v", mod)
		}
	}
}

func TestCheckForUpdates(t *testing.T) {
	installDir := t.TempDir()
	// 100 is current, 200 is behind, 300 no longer exists upstream
	seedModsDir(t, installDir, "1_100", "2_200", "3_300")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/mods" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var body struct {
			ModIDs []int `json:"modIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		if len(body.ModIDs) != 3 {
			t.Errorf("Expected 3 unique project ids, got %v", body.ModIDs)
		}
		json.NewEncoder(w).Encode(projectsResponse{Data: []project{
			{ID: 1, Name: "Current Mod", MainFileID: 100},
			{ID: 2, Name: "Stale Mod", MainFileID: 250},
		}})
	}))
	defer ts.Close()

	checker := NewChecker(ts.URL, nil, time.Hour, logger.New())
	serverID := uuid.New()
	statuses, err := checker.CheckForUpdates(context.Background(), []Installation{
		{ServerID: serverID, InstallDir: installDir},
	})
	if err != nil {
		t.Fatalf("CheckForUpdates failed: %v", err)
	}

	if len(statuses) != 1 {
		t.Fatalf("Expected 1 server status, got %d", len(statuses))
	}
	byProject := make(map[int]ModStatus)
	for _, mod := range statuses[0].ModStatuses {
		byProject[mod.ProjectID] = mod.Status
	}
	if byProject[1] != StatusUpToDate {
		t.Fatalf("Project 1 should be up to date, got %s", byProject[1])
	}
	if byProject[2] != StatusOutOfDate {
		t.Fatalf("Project 2 should be out of date, got %s", byProject[2])
	}
	if byProject[3] != StatusRemoved {
		t.Fatalf("Project 3 should be removed, got %s", byProject[3])
	}
}

func TestCheckForUpdatesNoModsInstalled(t *testing.T) {
	checker := NewChecker("http://unused", nil, time.Hour, logger.New())
	statuses, err := checker.CheckForUpdates(context.Background(), []Installation{
		{ServerID: uuid.New(), InstallDir: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("CheckForUpdates failed: %v", err)
	}
	if statuses != nil {
		t.Fatalf("Expected no statuses, got %v", statuses)
	}
}

func TestCheckForUpdatesServesFromCache(t *testing.T) {
	installDir := t.TempDir()
	seedModsDir(t, installDir, "1_100")

	store := NewStore(filepath.Join(t.TempDir(), "cache.db"), logger.New())
	if err := store.Initialize(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()
	if err := store.Put(1, "Cached Mod", 150); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(projectsResponse{})
	}))
	defer ts.Close()

	checker := NewChecker(ts.URL, store, time.Hour, logger.New())
	statuses, err := checker.CheckForUpdates(context.Background(), []Installation{
		{ServerID: uuid.New(), InstallDir: installDir},
	})
	if err != nil {
		t.Fatalf("CheckForUpdates failed: %v", err)
	}
	if requests != 0 {
		t.Fatalf("A cached project should not hit the API, saw %d requests", requests)
	}
	if len(statuses) != 1 || statuses[0].ModStatuses[0].Status != StatusOutOfDate {
		t.Fatalf("Cached main file 150 > installed 100 should be out of date: %+v", statuses)
	}
}
