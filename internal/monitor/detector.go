package monitor

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

// HistorySource returns a player's recent matches, most recent first.
type HistorySource interface {
	GetMatchHistory(ctx context.Context, playerID string, limit int) ([]faceit.MatchHistoryItem, error)
}

// MatchSet is the set of match ids already announced during one run of the
// poll loop. It is safe for concurrent use.
type MatchSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMatchSet returns an empty set.
func NewMatchSet() *MatchSet {
	return &MatchSet{ids: make(map[string]struct{})}
}

// Has reports whether id has been announced.
func (s *MatchSet) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Add records id. It reports false if id was already present.
func (s *MatchSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len returns the number of announced matches.
func (s *MatchSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Detector finds a player's latest match and decides whether it is new.
type Detector struct {
	history HistorySource
	limit   int
	log     zerolog.Logger
}

// NewDetector returns a Detector that asks for limit history entries per call.
func NewDetector(history HistorySource, limit int, log zerolog.Logger) *Detector {
	if limit <= 0 {
		limit = 1
	}
	return &Detector{history: history, limit: limit, log: log}
}

// LatestUnseenMatch returns the player's most recent match id if it is not in
// notified. Upstream failures are logged and reported as no candidate.
func (d *Detector) LatestUnseenMatch(ctx context.Context, p model.TrackedPlayer, notified *MatchSet) (string, bool) {
	items, err := d.history.GetMatchHistory(ctx, p.PlayerID, d.limit)
	if err != nil {
		detectFailures.Inc()
		d.log.Error().Err(err).
			Str("nickname", p.Nickname).
			Str("player_id", p.PlayerID).
			Msg("failed to fetch match history")
		return "", false
	}
	if len(items) == 0 || items[0].MatchID == "" {
		return "", false
	}

	matchID := items[0].MatchID
	if notified.Has(matchID) {
		return "", false
	}
	return matchID, true
}
