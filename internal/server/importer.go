package server

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"ark_manager/internal/gameconfig"
	"ark_manager/internal/logger"
	"ark_manager/model"
)

// ImportServerSettings builds a new server profile from an existing
// installation. When importINIs is set, every INI file the schema knows
// about is read and its non-default values become overrides; otherwise the
// INIs stay externally managed and the manager never prunes them.
func ImportServerSettings(metadata *gameconfig.Metadata, installDir string, importINIs bool, log *logger.Logger) (*model.ServerSettings, error) {
	var entries gameconfig.Entries

	if importINIs {
		dir := gameconfig.IniDirectory(installDir)
		for _, file := range schemaIniFiles(metadata) {
			path := filepath.Join(dir, file.FileName())
			if _, err := os.Stat(path); os.IsNotExist(err) {
				continue
			}
			log.Debug("Importing from %s", path)
			imported, err := gameconfig.ImportINIWithMetadata(metadata, path, log)
			if err != nil {
				return nil, err
			}
			entries.Entries = append(entries.Entries, imported.Entries...)
		}
	}

	return &model.ServerSettings{
		ID:                         uuid.New(),
		Name:                       filepath.Base(installDir),
		InstallationLocation:       installDir,
		AllowExternalIniManagement: !importINIs,
		ConfigEntries:              entries,
	}, nil
}

// schemaIniFiles returns the distinct INI files the schema stores settings
// in, in first-seen order.
func schemaIniFiles(metadata *gameconfig.Metadata) []gameconfig.IniFile {
	var files []gameconfig.IniFile
	seen := make(map[gameconfig.IniFile]struct{})
	for i := range metadata.Entries {
		location := metadata.Entries[i].Location
		if location.Kind != gameconfig.LocationIniOption {
			continue
		}
		if _, ok := seen[location.File]; ok {
			continue
		}
		seen[location.File] = struct{}{}
		files = append(files, location.File)
	}
	return files
}
