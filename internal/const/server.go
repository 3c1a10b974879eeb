package _const

// ARK: Survival Ascended server constants
const (
	// Steam app id of the dedicated server
	ArkServerAppID = "2430930"

	// CurseForge game id used for the mods directory layout
	CurseForgeAppID = "83374"

	// CurseForge proxy endpoint queried for mod versions
	DefaultModAPIBaseURL = "https://api.curse.tools/v1/cf"

	// Paths relative to a server installation
	ServerBinaryRelPath    = "ShooterGame/Binaries/Win64/ArkAscendedServer.exe"
	ServerAPIBinaryRelPath = "ShooterGame/Binaries/Win64/AsaApiLoader.exe"
	ServerLogsRelPath      = "ShooterGame/Saved/Logs"
	ServerModsRelPath      = "ShooterGame/Binaries/Win64/ShooterGame/Mods"

	// Default network configuration
	DefaultGamePort  = 7777
	DefaultQueryPort = 27015
	DefaultRconPort  = 27020
)
