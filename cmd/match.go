package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/faceitwatch/internal/app"
	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
	"github.com/pable/faceitwatch/internal/report"
)

var (
	matchPlayers []string
	matchHTML    bool
)

// matchCmd aggregates one FACEIT match for a set of players.
var matchCmd = &cobra.Command{
	Use:   "match <match-id>",
	Short: "Show the scoreboard of one match for the given players",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringSliceVarP(&matchPlayers, "player", "p", nil, "FACEIT nickname (repeatable)")
	matchCmd.Flags().BoolVar(&matchHTML, "html", false, "print the chat message instead of a table")
	matchCmd.MarkFlagRequired("player")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.RequireFaceit(); err != nil {
		return err
	}

	ctx := cmd.Context()
	fc := app.NewFaceitClient(cfg)

	mc := model.MatchCandidate{MatchID: args[0]}
	for _, nick := range matchPlayers {
		p, err := fc.GetPlayerByNickname(ctx, nick)
		if errors.Is(err, faceit.ErrPlayerNotFound) {
			fmt.Fprintf(os.Stderr, "Player %s not found on FACEIT, skipping.\n", nick)
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve %s: %w", nick, err)
		}
		mc.Participants = append(mc.Participants, model.TrackedPlayer{Nickname: nick, PlayerID: p.PlayerID})
	}

	res, err := app.NewAggregator(cfg, fc, log).Aggregate(ctx, mc)
	if err != nil {
		return fmt.Errorf("aggregate match %s: %w", mc.MatchID, err)
	}

	if matchHTML {
		fmt.Fprintln(os.Stdout, report.RenderMatch(*res))
		return nil
	}
	report.PrintResult(os.Stdout, *res)
	return nil
}
