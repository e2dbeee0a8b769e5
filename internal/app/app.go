// Package app wires the long-running bot process together with fx.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/pable/faceitwatch/internal/aggregator"
	"github.com/pable/faceitwatch/internal/api"
	"github.com/pable/faceitwatch/internal/auth"
	"github.com/pable/faceitwatch/internal/command"
	"github.com/pable/faceitwatch/internal/config"
	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/monitor"
	"github.com/pable/faceitwatch/internal/report"
	"github.com/pable/faceitwatch/internal/roster"
	"github.com/pable/faceitwatch/internal/statuspage"
	"github.com/pable/faceitwatch/internal/storage"
	"github.com/pable/faceitwatch/internal/telegram"
)

// Options tunes the serve process.
type Options struct {
	// AutoStart starts the poll loop as soon as the bot is up.
	AutoStart bool
}

// Module provides every component of the serve process. The caller supplies
// *config.Config, zerolog.Logger and Options.
var Module = fx.Options(
	fx.Provide(NewFaceitClient),
	fx.Provide(NewRosterStore),
	fx.Provide(NewAggregator),
	fx.Provide(NewDetector),
	fx.Provide(NewStatusPage),
	fx.Provide(NewBot),
	fx.Provide(NewPoller),
	fx.Provide(NewAllowlist),
	fx.Provide(NewCommandHandler),
	fx.Invoke(Run),
)

// NewFaceitClient returns the FACEIT client with the configured per-call timeout.
func NewFaceitClient(cfg *config.Config) *faceit.Client {
	return faceit.NewClient(cfg.FaceitAPIKey, faceit.WithTimeout(cfg.RequestTimeout))
}

// OpenRoster opens the configured roster backend. The returned close func
// is never nil.
func OpenRoster(cfg *config.Config) (roster.Store, func() error, error) {
	switch cfg.RosterBackend {
	case config.BackendSQLite:
		db, err := storage.Open(cfg.RosterPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return roster.NewFileStore(cfg.RosterPath), func() error { return nil }, nil
	}
}

// NewRosterStore opens the roster and closes it when the app stops.
func NewRosterStore(lc fx.Lifecycle, cfg *config.Config) (roster.Store, error) {
	store, closeFn, err := OpenRoster(cfg)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return closeFn() },
	})
	return store, nil
}

// NewAggregator formats start times in the configured timezone.
func NewAggregator(cfg *config.Config, fc *faceit.Client, log zerolog.Logger) *aggregator.Aggregator {
	return aggregator.New(fc, cfg.Location, log)
}

// NewDetector reads HistoryLimit entries per player.
func NewDetector(cfg *config.Config, fc *faceit.Client, log zerolog.Logger) *monitor.Detector {
	return monitor.NewDetector(fc, cfg.HistoryLimit, log)
}

// NewStatusPage returns the status page client.
func NewStatusPage(cfg *config.Config) *statuspage.Client {
	return statuspage.NewClient(cfg.StatusPageURL, cfg.RequestTimeout)
}

// NewBot logs in to Telegram.
func NewBot(cfg *config.Config, log zerolog.Logger) (*telegram.Bot, error) {
	return telegram.New(cfg.TelegramToken, log)
}

// NewPoller delivers rendered matches to the configured chat.
func NewPoller(
	cfg *config.Config,
	store roster.Store,
	fc *faceit.Client,
	det *monitor.Detector,
	agg *aggregator.Aggregator,
	bot *telegram.Bot,
	log zerolog.Logger,
) *monitor.Poller {
	return monitor.NewPoller(monitor.Config{
		Roster:     store,
		Resolver:   fc,
		Detector:   det,
		Aggregator: agg,
		Render:     report.RenderMatch,
		Delivery:   bot,
		ChannelID:  cfg.ChatID,
		Interval:   cfg.PollInterval,
		Logger:     log,
	})
}

// NewAllowlist authorizes ALLOWED_USER_IDS.
func NewAllowlist(cfg *config.Config) *auth.Allowlist {
	return auth.NewAllowlist(cfg.AllowedUserIDs)
}

// NewCommandHandler wires operator commands to the poller and the roster.
func NewCommandHandler(
	p *monitor.Poller,
	a *auth.Allowlist,
	store roster.Store,
	fc *faceit.Client,
	sp *statuspage.Client,
	log zerolog.Logger,
) *command.Handler {
	return command.NewHandler(p, a, store, fc, sp, log)
}

// Run hooks the command listener, the optional metrics server and the poll
// loop into the fx lifecycle.
func Run(
	lc fx.Lifecycle,
	opts Options,
	cfg *config.Config,
	bot *telegram.Bot,
	handler *command.Handler,
	poller *monitor.Poller,
	allow *auth.Allowlist,
	log zerolog.Logger,
) {
	listenCtx, stopListening := context.WithCancel(context.Background())
	listenDone := make(chan struct{})

	var srv *api.Server
	if cfg.MetricsAddr != "" {
		srv = api.NewServer(cfg.MetricsAddr, poller, log)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if allow.Len() == 0 {
				log.Warn().Msg("ALLOWED_USER_IDS is empty, every command will be refused")
			}
			if opts.AutoStart {
				if err := poller.Start(); err != nil {
					return fmt.Errorf("start monitoring: %w", err)
				}
			}
			if srv != nil {
				if err := srv.Start(); err != nil {
					poller.Stop()
					return fmt.Errorf("start metrics server: %w", err)
				}
			}
			go func() {
				defer close(listenDone)
				bot.Listen(listenCtx, handler)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopListening()
			if err := poller.Stop(); err != nil && !errors.Is(err, monitor.ErrNotRunning) {
				log.Warn().Err(err).Msg("stop monitoring")
			}
			if err := poller.Wait(ctx); err != nil {
				log.Warn().Err(err).Msg("poll loop did not drain before shutdown")
			}
			select {
			case <-listenDone:
			case <-ctx.Done():
			}
			if srv != nil {
				if err := srv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("metrics server shutdown failed")
					return err
				}
			}
			log.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
