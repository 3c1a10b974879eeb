package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ark_manager/model"
)

// LoadServerProfiles reads every server profile from the profiles directory.
// Files that fail to parse are skipped and reported through the returned
// slice of errors so one bad profile does not hide the rest.
func LoadServerProfiles(profilesDir string) ([]*model.ServerSettings, []error) {
	entries, err := os.ReadDir(profilesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read profiles directory %s: %w", profilesDir, err)}
	}

	var profiles []*model.ServerSettings
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(profilesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read profile %s: %w", path, err))
			continue
		}
		var settings model.ServerSettings
		if err := json.Unmarshal(data, &settings); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse profile %s: %w", path, err))
			continue
		}
		profiles = append(profiles, &settings)
	}
	return profiles, errs
}

// SaveServerProfile writes one server profile as <id>.json in the profiles
// directory.
func SaveServerProfile(profilesDir string, settings *model.ServerSettings) error {
	if err := os.MkdirAll(profilesDir, 0755); err != nil {
		return fmt.Errorf("failed to create profiles directory %s: %w", profilesDir, err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", settings.ID, err)
	}
	path := filepath.Join(profilesDir, settings.ID.String()+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", path, err)
	}
	return nil
}
