package model

import (
	"github.com/google/uuid"

	"ark_manager/internal/gameconfig"
)

// ServerSettings is one managed server profile, persisted as a JSON file in
// the profiles directory. Settings equal to the schema defaults are not
// stored; ConfigEntries holds only deliberate overrides.
type ServerSettings struct {
	ID                         uuid.UUID          `json:"id"`
	Name                       string             `json:"name"`
	InstallationLocation       string             `json:"installation_location"`
	AllowExternalIniManagement bool               `json:"allow_external_ini_management,omitempty"`
	UseExternalRcon            bool               `json:"use_external_rcon,omitempty"`
	ConfigEntries              gameconfig.Entries `json:"config_entries"`
}

// GetFullInstallationLocation returns the server's install directory.
func (s *ServerSettings) GetFullInstallationLocation() string {
	return s.InstallationLocation
}
