// Package model holds the types that flow through the match notification
// pipeline.
package model

// TrackedPlayer is a roster entry whose FACEIT id has been resolved.
type TrackedPlayer struct {
	Nickname string
	PlayerID string
}

// Candidate is one tracked player's latest, not yet announced match.
type Candidate struct {
	Player  TrackedPlayer
	MatchID string
}

// MatchCandidate is a distinct unannounced match together with every tracked
// player who took part in it, in roster order.
type MatchCandidate struct {
	MatchID      string
	Participants []TrackedPlayer
}

// PlayerIDs returns the set of participant ids.
func (c MatchCandidate) PlayerIDs() map[string]bool {
	ids := make(map[string]bool, len(c.Participants))
	for _, p := range c.Participants {
		ids[p.PlayerID] = true
	}
	return ids
}

// Nicknames returns participant nicknames in order.
func (c MatchCandidate) Nicknames() []string {
	out := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		out[i] = p.Nickname
	}
	return out
}

// PlayerStatRow is one tracked player's line in a notification. Every field
// is display text; missing values hold "N/A".
type PlayerStatRow struct {
	Nickname string
	Kills    string
	Deaths   string
	KDRatio  string
	KRRatio  string
}

// MatchResult is the aggregated outcome of one match from the point of view
// of the tracked players in it.
type MatchResult struct {
	MatchID      string
	Map          string
	Rounds       string
	WinnerTeamID string
	// TeamID is the team the tracked players were found on.
	TeamID string

	StartedAt       int64
	FinishedAt      int64
	StartTime       string
	DurationMinutes int64
	DemoURL         string

	Players []PlayerStatRow
}

// Won reports whether the tracked group's team is the round winner.
func (r MatchResult) Won() bool {
	return r.TeamID != "" && r.TeamID == r.WinnerTeamID
}
