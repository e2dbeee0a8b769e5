package faceit

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable is substituted for any stat the API leaves out.
const NotAvailable = "N/A"

// MatchStats is the body of /matches/{id}/stats.
type MatchStats struct {
	Rounds []RoundStats `json:"rounds"`
}

// RoundStats is one map of a match. Best-of-one matches have exactly one.
type RoundStats struct {
	MatchID    string  `json:"match_id"`
	RoundStats StatMap `json:"round_stats"`
	Teams      []Team  `json:"teams"`
}

// Team is one side of a round with its players.
type Team struct {
	TeamID    string        `json:"team_id"`
	TeamStats StatMap       `json:"team_stats"`
	Players   []PlayerStats `json:"players"`
}

// PlayerStats is one player's line in a round.
type PlayerStats struct {
	PlayerID    string  `json:"player_id"`
	Nickname    string  `json:"nickname"`
	PlayerStats StatMap `json:"player_stats"`
}

// StatMap holds the loosely typed key/value stats FACEIT returns. Values are
// usually strings ("21", "1.31") but numbers and nulls show up too.
type StatMap map[string]json.RawMessage

// Value returns the stat as a string, or NotAvailable when the key is
// missing, null or empty.
func (m StatMap) Value(key string) string {
	raw, ok := m[key]
	if !ok || len(raw) == 0 {
		return NotAvailable
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return NotAvailable
		}
		return s
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// null, objects and arrays are not stats we can show
	return NotAvailable
}

// Round stat keys.
const (
	KeyWinner = "Winner"
	KeyRounds = "Rounds"
	KeyMap    = "Map"
)

// Player stat keys.
const (
	KeyKills   = "Kills"
	KeyDeaths  = "Deaths"
	KeyKDRatio = "K/D Ratio"
	KeyKRRatio = "K/R Ratio"
)
