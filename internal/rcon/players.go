package rcon

import (
	"regexp"
	"strconv"
)

// PlayerEntry is one connected player as reported by ListPlayers.
type PlayerEntry struct {
	PlayerNum int
	UserName  string
	UserID    string
}

// ListPlayers responses look like "0. Bob, 1a2b3c...", one player per line.
var playerListPattern = regexp.MustCompile(`(?m)^([0-9]+)\. ([^,]+), ([0-9a-f]+)`)

// ParsePlayerList extracts the player entries from a ListPlayers response
// body. Lines that do not match the expected shape are skipped.
func ParsePlayerList(response string) []PlayerEntry {
	var players []PlayerEntry
	for _, match := range playerListPattern.FindAllStringSubmatch(response, -1) {
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		players = append(players, PlayerEntry{
			PlayerNum: num,
			UserName:  match[2],
			UserID:    match[3],
		})
	}
	return players
}

// ListPlayers asks the server for its connected players.
func (c *Connection) ListPlayers() ([]PlayerEntry, error) {
	response, err := c.Command("ListPlayers")
	if err != nil {
		return nil, err
	}
	return ParsePlayerList(response), nil
}
