package monitor

import "github.com/pable/faceitwatch/internal/model"

// Group collapses per-player candidates into one entry per match id. Groups
// come out in the order their match id was first seen; participants keep
// their input order and appear once each.
func Group(cands []model.Candidate) []model.MatchCandidate {
	index := make(map[string]int)
	var groups []model.MatchCandidate

	for _, c := range cands {
		i, ok := index[c.MatchID]
		if !ok {
			i = len(groups)
			index[c.MatchID] = i
			groups = append(groups, model.MatchCandidate{MatchID: c.MatchID})
		}
		if hasPlayer(groups[i].Participants, c.Player.PlayerID) {
			continue
		}
		groups[i].Participants = append(groups[i].Participants, c.Player)
	}
	return groups
}

func hasPlayer(ps []model.TrackedPlayer, id string) bool {
	for _, p := range ps {
		if p.PlayerID == id {
			return true
		}
	}
	return false
}
