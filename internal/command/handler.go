// Package command dispatches operator commands to the poll loop, the roster
// and the status page, and produces the chat reply for each.
package command

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/monitor"
	"github.com/pable/faceitwatch/internal/report"
	"github.com/pable/faceitwatch/internal/roster"
	"github.com/pable/faceitwatch/internal/statuspage"
)

// Command names, without the leading slash.
const (
	CmdStart        = "start_monitoring"
	CmdStop         = "stop_monitoring"
	CmdStatus       = "status"
	CmdAddPlayer    = "add_player"
	CmdRemovePlayer = "remove_player"
	CmdListPlayers  = "list_players"
	CmdFaceitStatus = "faceit_status"
	CmdHelp         = "help"
)

const (
	msgUnauthorized   = "You are not authorized to use this bot."
	msgStarted        = "Monitoring started."
	msgAlreadyRunning = "Monitoring is already running."
	msgStopped        = "Monitoring stopped."
	msgNotRunning     = "Monitoring is not running."
	msgStillStopping  = "Monitoring is still stopping, try again in a moment."
	msgStartFailed    = "Failed to start monitoring."
	msgUpstreamFailed = "Could not reach FACEIT, try again later."
	msgRosterFailed   = "Could not update the tracking list."
	msgStatusFailed   = "Could not fetch the FACEIT status page."
	msgEmptyRoster    = "No players are being tracked."
	msgUnknown        = "Unknown command. Send /help for the list of commands."
	usageAddPlayer    = "Usage: /add_player NICKNAME"
	usageRemovePlayer = "Usage: /remove_player NICKNAME"
)

const helpText = `<b>Commands</b>
/start_monitoring - start watching tracked players
/stop_monitoring - stop watching
/status - show the monitoring state
/add_player NICKNAME - track a FACEIT player
/remove_player NICKNAME - stop tracking a player
/list_players - show the tracking list
/faceit_status - show the FACEIT service status
/help - show this message

Tracking list changes apply the next time monitoring starts.`

// Controller starts and stops the poll loop.
type Controller interface {
	Start() error
	Stop() error
	Status() monitor.Status
}

// Authorizer decides whether an actor may issue commands.
type Authorizer interface {
	IsAllowed(userID int64) bool
}

// Resolver checks that a nickname exists upstream.
type Resolver interface {
	GetPlayerByNickname(ctx context.Context, nickname string) (*faceit.Player, error)
}

// StatusPage fetches the upstream service status.
type StatusPage interface {
	Summary(ctx context.Context) (*statuspage.Summary, error)
}

// Handler turns commands into replies.
type Handler struct {
	controller Controller
	auth       Authorizer
	roster     roster.Store
	resolver   Resolver
	status     StatusPage
	log        zerolog.Logger
}

// NewHandler returns a Handler over the given collaborators.
func NewHandler(controller Controller, auth Authorizer, store roster.Store, resolver Resolver, status StatusPage, log zerolog.Logger) *Handler {
	return &Handler{
		controller: controller,
		auth:       auth,
		roster:     store,
		resolver:   resolver,
		status:     status,
		log:        log,
	}
}

// Handle runs the named command for actorID and returns the reply text
// (HTML). Every command, help included, requires authorization.
func (h *Handler) Handle(ctx context.Context, actorID int64, name, args string) string {
	log := h.log.With().Int64("actor_id", actorID).Str("command", name).Logger()

	if !h.auth.IsAllowed(actorID) {
		log.Warn().Msg("unauthorized command")
		return msgUnauthorized
	}

	args = strings.TrimSpace(args)
	switch name {
	case CmdStart:
		return h.start(log)
	case CmdStop:
		return h.stop(log)
	case CmdStatus:
		return report.RenderMonitorStatus(h.controller.Status())
	case CmdAddPlayer:
		return h.addPlayer(ctx, log, args)
	case CmdRemovePlayer:
		return h.removePlayer(ctx, log, args)
	case CmdListPlayers:
		return h.listPlayers(ctx, log)
	case CmdFaceitStatus:
		return h.faceitStatus(ctx, log)
	case CmdHelp, "start":
		return helpText
	default:
		return msgUnknown
	}
}

func (h *Handler) start(log zerolog.Logger) string {
	err := h.controller.Start()
	switch {
	case err == nil:
		log.Info().Msg("monitoring started by operator")
		return msgStarted
	case errors.Is(err, monitor.ErrAlreadyRunning):
		return msgAlreadyRunning
	case errors.Is(err, monitor.ErrStopping):
		return msgStillStopping
	default:
		log.Error().Err(err).Msg("failed to start monitoring")
		return msgStartFailed
	}
}

func (h *Handler) stop(log zerolog.Logger) string {
	if err := h.controller.Stop(); err != nil {
		return msgNotRunning
	}
	log.Info().Msg("monitoring stopped by operator")
	return msgStopped
}

func (h *Handler) addPlayer(ctx context.Context, log zerolog.Logger, nick string) string {
	if nick == "" || strings.ContainsAny(nick, " \t\n") {
		return usageAddPlayer
	}
	esc := html.EscapeString(nick)

	tracked, err := h.roster.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roster")
		return msgRosterFailed
	}
	if slices.Contains(tracked, nick) {
		return fmt.Sprintf("%s is already being tracked.", esc)
	}

	if _, err := h.resolver.GetPlayerByNickname(ctx, nick); err != nil {
		if errors.Is(err, faceit.ErrPlayerNotFound) {
			return fmt.Sprintf("Player %s not found on FACEIT.", esc)
		}
		log.Error().Err(err).Str("nickname", nick).Msg("failed to look up player")
		return msgUpstreamFailed
	}

	if err := h.roster.Add(ctx, nick); err != nil {
		if errors.Is(err, roster.ErrAlreadyTracked) {
			return fmt.Sprintf("%s is already being tracked.", esc)
		}
		log.Error().Err(err).Str("nickname", nick).Msg("failed to add player")
		return msgRosterFailed
	}
	log.Info().Str("nickname", nick).Msg("player added to roster")
	return fmt.Sprintf("%s added to the tracking list.", esc)
}

func (h *Handler) removePlayer(ctx context.Context, log zerolog.Logger, nick string) string {
	if nick == "" || strings.ContainsAny(nick, " \t\n") {
		return usageRemovePlayer
	}
	esc := html.EscapeString(nick)

	if err := h.roster.Remove(ctx, nick); err != nil {
		if errors.Is(err, roster.ErrNotTracked) {
			return fmt.Sprintf("%s not found in the tracking list.", esc)
		}
		log.Error().Err(err).Str("nickname", nick).Msg("failed to remove player")
		return msgRosterFailed
	}
	log.Info().Str("nickname", nick).Msg("player removed from roster")
	return fmt.Sprintf("%s removed from the tracking list.", esc)
}

func (h *Handler) listPlayers(ctx context.Context, log zerolog.Logger) string {
	nicks, err := h.roster.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load roster")
		return msgRosterFailed
	}
	if len(nicks) == 0 {
		return msgEmptyRoster
	}
	var b strings.Builder
	b.WriteString("<b>Tracked players:</b>")
	for i, n := range nicks {
		fmt.Fprintf(&b, "\n%d. %s", i+1, html.EscapeString(n))
	}
	return b.String()
}

func (h *Handler) faceitStatus(ctx context.Context, log zerolog.Logger) string {
	s, err := h.status.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch status page")
		return msgStatusFailed
	}
	return report.RenderStatusPage(s)
}
