package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pable/faceitwatch/internal/aggregator"
	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

type pollerFixture struct {
	up       *fakeUpstream
	agg      *fakeAggregator
	delivery *fakeDelivery
	roster   *fakeRoster
	poller   *Poller
}

func newPollerFixture(t *testing.T, interval time.Duration) *pollerFixture {
	t.Helper()
	f := &pollerFixture{
		up: &fakeUpstream{
			ids:        map[string]string{"alice": "p-alice", "bob": "p-bob", "carol": "p-carol"},
			latest:     map[string]string{},
			historyErr: map[string]error{},
		},
		agg:      &fakeAggregator{fail: map[string]error{}},
		delivery: &fakeDelivery{},
		roster:   &fakeRoster{nicknames: []string{"alice", "bob"}},
	}
	f.poller = NewPoller(Config{
		Roster:     f.roster,
		Resolver:   f.up,
		Detector:   NewDetector(f.up, 1, zerolog.Nop()),
		Aggregator: f.agg,
		Render:     func(r model.MatchResult) string { return "match " + r.MatchID },
		Delivery:   f.delivery,
		ChannelID:  "chat-1",
		Interval:   interval,
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(func() {
		if f.poller.Stop() == nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			f.poller.Wait(ctx)
		}
	})
	return f
}

func TestIterateSharedMatchNotifiedOnce(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M1"
	f.up.latest["p-bob"] = "M1"

	players := []model.TrackedPlayer{alice, bob}
	notified := NewMatchSet()

	if n := f.poller.Iterate(context.Background(), players, notified); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if f.delivery.count() != 1 {
		t.Fatalf("expected 1 sent message, got %d", f.delivery.count())
	}
	if got := f.delivery.sent[0]; got.channelID != "chat-1" || got.text != "match M1" {
		t.Errorf("unexpected message %+v", got)
	}
	if len(f.agg.seen) != 1 || len(f.agg.seen[0].Participants) != 2 {
		t.Fatalf("expected one aggregation with both players, got %+v", f.agg.seen)
	}
	if !notified.Has("M1") || notified.Len() != 1 {
		t.Errorf("M1 should be notified exactly once, set size %d", notified.Len())
	}

	// Second cycle: nothing new.
	if n := f.poller.Iterate(context.Background(), players, notified); n != 0 {
		t.Errorf("expected no deliveries on second cycle, got %d", n)
	}
	if f.delivery.count() != 1 {
		t.Errorf("already notified match was re-delivered")
	}
}

func TestIterateNoRoundDataRetried(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M2"
	f.agg.fail["M2"] = fmt.Errorf("M2: %w", aggregator.ErrNoRoundData)

	players := []model.TrackedPlayer{alice}
	notified := NewMatchSet()

	f.poller.Iterate(context.Background(), players, notified)
	if notified.Has("M2") {
		t.Fatal("match without round data must not be marked notified")
	}
	if f.delivery.count() != 0 {
		t.Errorf("nothing should be delivered, got %d", f.delivery.count())
	}

	f.poller.Iterate(context.Background(), players, notified)
	if got := f.agg.callCount("M2"); got != 2 {
		t.Errorf("expected the match to be retried, aggregated %d times", got)
	}

	delete(f.agg.fail, "M2")
	f.poller.Iterate(context.Background(), players, notified)
	if !notified.Has("M2") || f.delivery.count() != 1 {
		t.Errorf("expected delivery once stats are available")
	}
}

func TestIteratePlayerFailureIsolated(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.historyErr["p-alice"] = faceit.ErrRequestFailed
	f.up.latest["p-bob"] = "M3"

	n := f.poller.Iterate(context.Background(), []model.TrackedPlayer{alice, bob}, NewMatchSet())
	if n != 1 {
		t.Fatalf("bob's match should still be delivered, got %d deliveries", n)
	}
	if got := f.agg.seen[0].Nicknames(); len(got) != 1 || got[0] != "bob" {
		t.Errorf("unexpected participants %v", got)
	}
}

func TestIterateDeliveryFailureStillMarked(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M4"
	f.delivery.err = errors.New("telegram down")

	notified := NewMatchSet()
	if n := f.poller.Iterate(context.Background(), []model.TrackedPlayer{alice}, notified); n != 0 {
		t.Errorf("failed delivery should not count, got %d", n)
	}
	if !notified.Has("M4") {
		t.Error("match should be marked after a delivery attempt")
	}
}

func TestIterateCancelledBeforePlayers(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M5"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if n := f.poller.Iterate(ctx, []model.TrackedPlayer{alice}, NewMatchSet()); n != 0 {
		t.Errorf("cancelled cycle should not deliver, got %d", n)
	}
	if f.up.calls != 0 {
		t.Errorf("cancelled cycle should not call upstream, got %d calls", f.up.calls)
	}
}

func TestResolveSkipsUnknownPlayers(t *testing.T) {
	f := newPollerFixture(t, time.Hour)

	players := f.poller.Resolve(context.Background(), []string{"alice", "ghost", "bob"})
	if len(players) != 2 {
		t.Fatalf("expected 2 resolved players, got %d", len(players))
	}
	if players[0] != alice || players[1] != bob {
		t.Errorf("unexpected players %+v", players)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPollerLifecycle(t *testing.T) {
	f := newPollerFixture(t, 10*time.Millisecond)
	f.up.latest["p-alice"] = "M1"
	f.up.latest["p-bob"] = "M1"

	if st := f.poller.Status(); st.State != StateIdle {
		t.Fatalf("new poller should be idle, got %s", st.State)
	}
	if err := f.poller.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop while idle: want ErrNotRunning, got %v", err)
	}

	if err := f.poller.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.poller.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start: want ErrAlreadyRunning, got %v", err)
	}

	waitFor(t, func() bool { return f.poller.Status().Iterations >= 3 })
	if got := f.delivery.count(); got != 1 {
		t.Errorf("expected exactly one notification across iterations, got %d", got)
	}
	st := f.poller.Status()
	if st.State != StateRunning || st.Players != 2 || st.Notified != 1 {
		t.Errorf("unexpected status %+v", st)
	}

	if err := f.poller.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.poller.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st := f.poller.Status(); st.State != StateIdle {
		t.Errorf("stopped poller should be idle, got %s", st.State)
	}

	// A restart begins with an empty notified set, so M1 is announced again.
	if err := f.poller.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	waitFor(t, func() bool { return f.delivery.count() == 2 })
}

func TestStartRosterError(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.roster.err = errors.New("disk gone")

	if err := f.poller.Start(); err == nil {
		t.Fatal("expected roster error")
	}
	if st := f.poller.Status(); st.State != StateIdle {
		t.Errorf("failed start should leave the poller idle, got %s", st.State)
	}
}

func TestCheckOnce(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M1"
	f.up.latest["p-bob"] = "M2"

	n, err := f.poller.CheckOnce(context.Background())
	if err != nil {
		t.Fatalf("CheckOnce: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}
}

// partialStats serves a first round without winner, score or map until
// ready is set, the way stats look while upstream is still processing.
type partialStats struct {
	ready bool
}

func (p *partialStats) GetMatchStats(ctx context.Context, matchID string) (*faceit.MatchStats, error) {
	round := faceit.RoundStats{MatchID: matchID}
	if p.ready {
		round.RoundStats = faceit.StatMap{
			faceit.KeyWinner: json.RawMessage(`"team1"`),
			faceit.KeyRounds: json.RawMessage(`"16 / 9"`),
			faceit.KeyMap:    json.RawMessage(`"de_nuke"`),
		}
		round.Teams = []faceit.Team{{TeamID: "team1", Players: []faceit.PlayerStats{{PlayerID: "p-alice", Nickname: "alice"}}}}
	}
	return &faceit.MatchStats{Rounds: []faceit.RoundStats{round}}, nil
}

func (p *partialStats) GetMatch(ctx context.Context, matchID string) (*faceit.MatchDetail, error) {
	return &faceit.MatchDetail{MatchID: matchID}, nil
}

func TestIterateIncompleteStatsNotMarked(t *testing.T) {
	f := newPollerFixture(t, time.Hour)
	f.up.latest["p-alice"] = "M9"
	src := &partialStats{}
	f.poller.cfg.Aggregator = aggregator.New(src, time.UTC, zerolog.Nop())

	players := []model.TrackedPlayer{alice}
	notified := NewMatchSet()

	f.poller.Iterate(context.Background(), players, notified)
	if notified.Has("M9") || f.delivery.count() != 0 {
		t.Fatal("a match with incomplete stats must not be announced or marked")
	}

	src.ready = true
	f.poller.Iterate(context.Background(), players, notified)
	if !notified.Has("M9") || f.delivery.count() != 1 {
		t.Errorf("expected one delivery once stats are complete, got %d", f.delivery.count())
	}
}
