package config

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed config.json
var embeddedConfig embed.FS

// ModsConfig holds CurseForge mod tracking configuration
type ModsConfig struct {
	Enabled       bool   `json:"enabled"`                  // whether mod update checks run
	APIBaseURL    string `json:"api_base_url,omitempty"`   // CurseForge proxy endpoint
	CacheDatabase string `json:"cache_database,omitempty"` // sqlite file for cached versions
	CheckInterval int    `json:"check_interval"`           // seconds between checks
}

// Config holds the configuration for the ARK server manager
type Config struct {
	ProfilesDirectory string     `json:"profiles_directory,omitempty"`
	SteamCmdDirectory string     `json:"steamcmd_directory,omitempty"`
	AppID             string     `json:"app_id,omitempty"`
	LogLevel          string     `json:"log_level"`
	PatchNotesURL     string     `json:"patch_notes_url,omitempty"`
	Mods              ModsConfig `json:"mods"`
}

// DataRoot returns the manager's data directory, created on demand.
func DataRoot() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	root := filepath.Join(base, "ArkManager")
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	return root, nil
}

// Load loads configuration from an external file, falling back to the
// embedded default config. Missing optional fields keep their zero values so
// older files keep loading across upgrades.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		data, err = embeddedConfig.ReadFile("config.json")
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	root, err := DataRoot()
	if err != nil {
		return
	}
	if c.ProfilesDirectory == "" {
		c.ProfilesDirectory = filepath.Join(root, "Profiles")
	}
	if c.SteamCmdDirectory == "" {
		c.SteamCmdDirectory = filepath.Join(root, "SteamCMD")
	}
	if c.Mods.CacheDatabase == "" {
		c.Mods.CacheDatabase = filepath.Join(root, "mod_versions.db")
	}
}

// Save saves configuration to a JSON file
func (c *Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// UserMetadataPath returns the location of the user schema file.
func (c *Config) UserMetadataPath() (string, error) {
	root, err := DataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "config_metadata.json"), nil
}
