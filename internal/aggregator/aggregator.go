// Package aggregator turns FACEIT match stats and metadata into a MatchResult
// for the tracked players who took part.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

// TimeLayout is the pattern used for a match's start time.
const TimeLayout = "2006-01-02 15:04:05"

// ErrNoRoundData is returned when the stats endpoint has no rounds for a match.
var ErrNoRoundData = errors.New("match stats contain no round data")

// MatchSource is the subset of the FACEIT client the aggregator reads from.
type MatchSource interface {
	GetMatchStats(ctx context.Context, matchID string) (*faceit.MatchStats, error)
	GetMatch(ctx context.Context, matchID string) (*faceit.MatchDetail, error)
}

// Aggregator builds MatchResults.
type Aggregator struct {
	source MatchSource
	loc    *time.Location
	log    zerolog.Logger
}

// New returns an Aggregator that formats start times in loc (time.Local when nil).
func New(source MatchSource, loc *time.Location, log zerolog.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{source: source, loc: loc, log: log}
}

// Aggregate fetches stats and metadata for matchID and builds the result for
// the given participants.
func (a *Aggregator) Aggregate(ctx context.Context, mc model.MatchCandidate) (*model.MatchResult, error) {
	var (
		stats  *faceit.MatchStats
		detail *faceit.MatchDetail
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = a.source.GetMatchStats(gCtx, mc.MatchID)
		if err != nil {
			return fmt.Errorf("match stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		detail, err = a.source.GetMatch(gCtx, mc.MatchID)
		if err != nil {
			return fmt.Errorf("match details: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.Build(mc, stats, detail)
}

// Build derives the MatchResult from already fetched upstream responses. It
// performs no I/O, so the same inputs always give the same result.
func (a *Aggregator) Build(mc model.MatchCandidate, stats *faceit.MatchStats, detail *faceit.MatchDetail) (*model.MatchResult, error) {
	if stats == nil || len(stats.Rounds) == 0 {
		return nil, fmt.Errorf("%s: %w", mc.MatchID, ErrNoRoundData)
	}
	if detail == nil {
		detail = &faceit.MatchDetail{}
	}

	// Only the first round entry is used; multi-map series are not summed.
	round := stats.Rounds[0]
	if !complete(round) {
		return nil, fmt.Errorf("%s: round stats incomplete: %w", mc.MatchID, ErrNoRoundData)
	}

	res := &model.MatchResult{
		MatchID:      mc.MatchID,
		Map:          round.RoundStats.Value(faceit.KeyMap),
		Rounds:       round.RoundStats.Value(faceit.KeyRounds),
		WinnerTeamID: round.RoundStats.Value(faceit.KeyWinner),
		StartedAt:    detail.StartedAt,
		FinishedAt:   detail.FinishedAt,
		StartTime:    time.Unix(detail.StartedAt, 0).In(a.loc).Format(TimeLayout),
		DemoURL:      faceit.NotAvailable,
	}
	res.DurationMinutes = durationMinutes(detail.StartedAt, detail.FinishedAt)
	if len(detail.DemoURLs) > 0 && detail.DemoURLs[0] != "" {
		res.DemoURL = detail.DemoURLs[0]
	}

	ids := mc.PlayerIDs()
	teams := map[string]bool{}
	for _, team := range round.Teams {
		for _, p := range team.Players {
			if !ids[p.PlayerID] {
				continue
			}
			// The last team a participant is found on decides the outcome.
			res.TeamID = team.TeamID
			teams[team.TeamID] = true
			res.Players = append(res.Players, model.PlayerStatRow{
				Nickname: p.Nickname,
				Kills:    p.PlayerStats.Value(faceit.KeyKills),
				Deaths:   p.PlayerStats.Value(faceit.KeyDeaths),
				KDRatio:  p.PlayerStats.Value(faceit.KeyKDRatio),
				KRRatio:  p.PlayerStats.Value(faceit.KeyKRRatio),
			})
		}
	}
	if len(teams) > 1 {
		a.log.Warn().
			Str("match_id", mc.MatchID).
			Str("team_id", res.TeamID).
			Msg("tracked players found on both teams, result is from the last team")
	}

	return res, nil
}

// complete reports whether a round carries the winner, score, map and teams
// needed to announce it. Stats are often published partially while the match
// is being processed upstream.
func complete(r faceit.RoundStats) bool {
	for _, key := range []string{faceit.KeyWinner, faceit.KeyRounds, faceit.KeyMap} {
		if r.RoundStats.Value(key) == faceit.NotAvailable {
			return false
		}
	}
	return len(r.Teams) > 0
}

// durationMinutes floors the elapsed seconds to whole minutes.
func durationMinutes(startedAt, finishedAt int64) int64 {
	return int64(math.Floor(float64(finishedAt-startedAt) / 60))
}
