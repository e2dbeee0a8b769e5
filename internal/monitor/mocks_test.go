package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

// fakeUpstream serves player lookups and match histories from maps.
type fakeUpstream struct {
	mu         sync.Mutex
	ids        map[string]string // nickname -> player id
	latest     map[string]string // player id -> latest match id
	historyErr map[string]error  // player id -> error
	calls      int
}

func (f *fakeUpstream) GetPlayerByNickname(ctx context.Context, nickname string) (*faceit.Player, error) {
	id, ok := f.ids[nickname]
	if !ok {
		return nil, fmt.Errorf("%w: %s", faceit.ErrPlayerNotFound, nickname)
	}
	return &faceit.Player{PlayerID: id, Nickname: nickname}, nil
}

func (f *fakeUpstream) GetMatchHistory(ctx context.Context, playerID string, limit int) ([]faceit.MatchHistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.historyErr[playerID]; err != nil {
		return nil, err
	}
	id, ok := f.latest[playerID]
	if !ok {
		return nil, nil
	}
	return []faceit.MatchHistoryItem{{MatchID: id}, {MatchID: "older"}}, nil
}

// fakeAggregator returns a result per match id, or err for ids in fail.
type fakeAggregator struct {
	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
	seen  []model.MatchCandidate
}

func (f *fakeAggregator) Aggregate(ctx context.Context, mc model.MatchCandidate) (*model.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[mc.MatchID]++
	f.seen = append(f.seen, mc)
	if err := f.fail[mc.MatchID]; err != nil {
		return nil, err
	}
	return &model.MatchResult{MatchID: mc.MatchID}, nil
}

func (f *fakeAggregator) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type sentMessage struct {
	channelID string
	text      string
}

// fakeDelivery records every message it is asked to send.
type fakeDelivery struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeDelivery) Send(ctx context.Context, channelID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, text: message})
	return f.err
}

func (f *fakeDelivery) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRoster struct {
	nicknames []string
	err       error
}

func (f *fakeRoster) Load(ctx context.Context) ([]string, error) {
	return f.nicknames, f.err
}
