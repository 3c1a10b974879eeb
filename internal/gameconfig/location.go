package gameconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// IniFile names a game configuration file without its .ini extension.
type IniFile string

const (
	IniFileGame             IniFile = "Game"
	IniFileGameUserSettings IniFile = "GameUserSettings"
)

// NormalizeIniFile maps a file name (with or without extension, any casing)
// onto its canonical form. Unknown files keep a lowercased custom name.
func NormalizeIniFile(name string) IniFile {
	base := strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".ini")
	switch base {
	case "game":
		return IniFileGame
	case "gameusersettings":
		return IniFileGameUserSettings
	default:
		return IniFile(base)
	}
}

// FileName returns the on-disk file name for this INI file.
func (f IniFile) FileName() string {
	return string(f) + ".ini"
}

// IniSection names a bracketed section within a game configuration file.
type IniSection string

const (
	SectionServerSettings  IniSection = "ServerSettings"
	SectionSessionSettings IniSection = "SessionSettings"
	SectionMultiHome       IniSection = "MultiHome"
	SectionGameSession     IniSection = "/Script/Engine.GameSession"
	SectionMessageOfTheDay IniSection = "MessageOfTheDay"
	SectionShooterGameMode IniSection = "/script/shootergame.shootergamemode"
	SectionModInstaller    IniSection = "ModInstaller"
)

// NormalizeIniSection maps a section header onto its canonical form. Unknown
// sections keep a lowercased custom name.
func NormalizeIniSection(name string) IniSection {
	switch strings.ToLower(name) {
	case "serversettings":
		return SectionServerSettings
	case "sessionsettings":
		return SectionSessionSettings
	case "multihome":
		return SectionMultiHome
	case "/script/engine.gamesession":
		return SectionGameSession
	case "messageoftheday":
		return SectionMessageOfTheDay
	case "/script/shootergame.shootergamemode":
		return SectionShooterGameMode
	case "modinstaller":
		return SectionModInstaller
	default:
		return IniSection(strings.ToLower(name))
	}
}

// LocationKind discriminates where a setting is externally stored.
type LocationKind string

const (
	LocationMapName           LocationKind = "map_name"
	LocationMapURLOption      LocationKind = "map_url_option"
	LocationCommandLineOption LocationKind = "command_line_option"
	LocationIniOption         LocationKind = "ini_option"
)

// Location addresses where a setting lives outside the application. Together
// with the setting name it forms the identity key within a schema.
type Location struct {
	Kind    LocationKind
	File    IniFile    // Kind == LocationIniOption
	Section IniSection // Kind == LocationIniOption
}

// MapNameLocation and friends are the fixed non-INI locations.
var (
	MapNameLocation           = Location{Kind: LocationMapName}
	MapURLOptionLocation      = Location{Kind: LocationMapURLOption}
	CommandLineOptionLocation = Location{Kind: LocationCommandLineOption}
)

// IniLocation addresses a key inside a section of a game INI file.
func IniLocation(file IniFile, section IniSection) Location {
	return Location{Kind: LocationIniOption, File: file, Section: section}
}

func (l Location) String() string {
	switch l.Kind {
	case LocationMapName:
		return "Map Name"
	case LocationMapURLOption:
		return "Map URL"
	case LocationCommandLineOption:
		return "Command Line"
	case LocationIniOption:
		return fmt.Sprintf("%s.ini [%s]", l.File, l.Section)
	default:
		return string(l.Kind)
	}
}

type locationJSON struct {
	Kind    LocationKind `json:"kind"`
	File    string       `json:"file,omitempty"`
	Section string       `json:"section,omitempty"`
}

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{l.Kind, string(l.File), string(l.Section)})
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw locationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case LocationMapName, LocationMapURLOption, LocationCommandLineOption:
		*l = Location{Kind: raw.Kind}
	case LocationIniOption:
		*l = Location{
			Kind:    LocationIniOption,
			File:    NormalizeIniFile(raw.File),
			Section: NormalizeIniSection(raw.Section),
		}
	default:
		return fmt.Errorf("unknown location kind %q", raw.Kind)
	}
	return nil
}
