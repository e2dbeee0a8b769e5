// Package monitor runs the match notification loop: it watches the recent
// match history of every tracked player, groups new matches, aggregates their
// stats and hands a rendered notification to the delivery channel.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

// DefaultInterval is the pause between two poll iterations.
const DefaultInterval = 60 * time.Second

var (
	ErrAlreadyRunning = errors.New("monitoring is already running")
	ErrNotRunning     = errors.New("monitoring is not running")
	ErrStopping       = errors.New("monitoring is still stopping")
)

// State is the lifecycle state of the poll loop.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// RosterSource lists the nicknames to track, in roster order.
type RosterSource interface {
	Load(ctx context.Context) ([]string, error)
}

// PlayerResolver maps a nickname to its FACEIT player.
type PlayerResolver interface {
	GetPlayerByNickname(ctx context.Context, nickname string) (*faceit.Player, error)
}

// MatchAggregator builds the result of one match.
type MatchAggregator interface {
	Aggregate(ctx context.Context, mc model.MatchCandidate) (*model.MatchResult, error)
}

// Deliverer sends a rendered message to a channel.
type Deliverer interface {
	Send(ctx context.Context, channelID, message string) error
}

// Config wires a Poller to its collaborators.
type Config struct {
	Roster     RosterSource
	Resolver   PlayerResolver
	Detector   *Detector
	Aggregator MatchAggregator
	Render     func(model.MatchResult) string
	Delivery   Deliverer
	ChannelID  string
	Interval   time.Duration
	Logger     zerolog.Logger
}

// Status is a snapshot of the poll loop.
type Status struct {
	State      State
	Players    int
	Notified   int
	Iterations int64
	LastPoll   time.Time
}

// Poller owns the poll loop and its notified-match set. Only one loop runs
// at a time.
type Poller struct {
	cfg Config
	log zerolog.Logger

	mu         sync.Mutex
	state      State
	cancel     context.CancelFunc
	done       chan struct{}
	notified   *MatchSet
	players    int
	iterations int64
	lastPoll   time.Time
}

// NewPoller returns an idle Poller.
func NewPoller(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		cfg:      cfg,
		log:      cfg.Logger,
		notified: NewMatchSet(),
	}
}

// Start loads the roster and launches the loop in the background. The
// notified set starts empty on every start.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateCancelled:
		return ErrStopping
	}

	nicknames, err := p.cfg.Roster.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.state = StateRunning
	p.notified = NewMatchSet()
	p.players = 0
	p.iterations = 0
	p.lastPoll = time.Time{}

	go p.run(ctx, done, nicknames, p.notified)

	p.log.Info().Int("roster_size", len(nicknames)).Dur("interval", p.cfg.Interval).Msg("monitoring started")
	return nil
}

// Stop asks the running loop to finish. The loop exits at its next safe point;
// calls already in flight complete first.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateRunning {
		return ErrNotRunning
	}
	p.cancel()
	p.state = StateCancelled
	p.log.Info().Msg("monitoring stop requested")
	return nil
}

// Wait blocks until the current loop has exited or ctx is done.
func (p *Poller) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a snapshot of the loop.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:      p.state,
		Players:    p.players,
		Notified:   p.notified.Len(),
		Iterations: p.iterations,
		LastPoll:   p.lastPoll,
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}, nicknames []string, notified *MatchSet) {
	defer func() {
		p.mu.Lock()
		p.state = StateIdle
		p.cancel = nil
		p.mu.Unlock()
		trackedPlayers.Set(0)
		close(done)
		p.log.Info().Msg("monitoring stopped")
	}()

	players := p.Resolve(ctx, nicknames)
	p.mu.Lock()
	p.players = len(players)
	p.mu.Unlock()
	trackedPlayers.Set(float64(len(players)))

	for {
		if ctx.Err() != nil {
			return
		}
		p.Iterate(ctx, players, notified)

		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Resolve looks up the player id of each nickname. Nicknames that cannot be
// resolved are logged and left out.
func (p *Poller) Resolve(ctx context.Context, nicknames []string) []model.TrackedPlayer {
	callCtx := context.WithoutCancel(ctx)
	players := make([]model.TrackedPlayer, 0, len(nicknames))
	for _, nick := range nicknames {
		if ctx.Err() != nil {
			break
		}
		fp, err := p.cfg.Resolver.GetPlayerByNickname(callCtx, nick)
		if err != nil {
			p.log.Warn().Err(err).Str("nickname", nick).Msg("failed to resolve player, skipping")
			continue
		}
		players = append(players, model.TrackedPlayer{Nickname: nick, PlayerID: fp.PlayerID})
	}
	return players
}

// Iterate runs one poll cycle over players and returns how many
// notifications were delivered. Cancellation of ctx is honored between
// players; upstream calls themselves are never interrupted.
func (p *Poller) Iterate(ctx context.Context, players []model.TrackedPlayer, notified *MatchSet) int {
	log := p.log.With().Str("cycle_id", uuid.New().String()).Logger()
	callCtx := context.WithoutCancel(ctx)

	var cands []model.Candidate
	for _, pl := range players {
		if ctx.Err() != nil {
			log.Debug().Msg("poll cancelled mid-cycle")
			return 0
		}
		if matchID, ok := p.cfg.Detector.LatestUnseenMatch(callCtx, pl, notified); ok {
			cands = append(cands, model.Candidate{Player: pl, MatchID: matchID})
		}
	}

	delivered := 0
	for _, mc := range Group(cands) {
		if p.notify(callCtx, log, mc, notified) {
			delivered++
		}
	}

	pollIterations.Inc()
	p.mu.Lock()
	p.iterations++
	p.lastPoll = time.Now()
	p.mu.Unlock()

	log.Debug().Int("players", len(players)).Int("candidates", len(cands)).Int("delivered", delivered).Msg("poll cycle finished")
	return delivered
}

// notify aggregates, renders and delivers one match. The match is marked as
// notified once delivery was attempted; aggregation failures leave it
// unmarked so the next cycle retries it.
func (p *Poller) notify(ctx context.Context, log zerolog.Logger, mc model.MatchCandidate, notified *MatchSet) bool {
	log = log.With().Str("match_id", mc.MatchID).Strs("players", mc.Nicknames()).Logger()

	res, err := p.cfg.Aggregator.Aggregate(ctx, mc)
	if err != nil {
		aggregateFailures.Inc()
		log.Warn().Err(err).Msg("failed to aggregate match, retrying next cycle")
		return false
	}

	err = p.cfg.Delivery.Send(ctx, p.cfg.ChannelID, p.cfg.Render(*res))
	notified.Add(mc.MatchID)
	if err != nil {
		deliveryFailures.Inc()
		log.Error().Err(err).Msg("failed to deliver match notification")
		return false
	}

	notificationsSent.Inc()
	log.Info().Msg("notified new match")
	return true
}

// CheckOnce loads the roster and runs a single poll cycle with an empty
// notified set, outside of the background loop.
func (p *Poller) CheckOnce(ctx context.Context) (int, error) {
	nicknames, err := p.cfg.Roster.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load roster: %w", err)
	}
	players := p.Resolve(ctx, nicknames)
	return p.Iterate(ctx, players, NewMatchSet()), nil
}
