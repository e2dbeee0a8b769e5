package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pable/faceitwatch/internal/app"
	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/report"
	"github.com/pable/faceitwatch/internal/roster"
)

var (
	rosterResolve   bool
	rosterSkipCheck bool
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the tracked players",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked players",
	Args:  cobra.NoArgs,
	RunE:  runRosterList,
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <nickname>...",
	Short: "Track one or more FACEIT players",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRosterAdd,
}

var rosterRemoveCmd = &cobra.Command{
	Use:   "remove <nickname>...",
	Short: "Stop tracking one or more players",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRosterRemove,
}

func init() {
	rosterListCmd.Flags().BoolVar(&rosterResolve, "resolve", false, "look up player id, level and ELO on FACEIT")
	rosterAddCmd.Flags().BoolVar(&rosterSkipCheck, "skip-check", false, "add without checking the nickname on FACEIT")

	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterAddCmd)
	rosterCmd.AddCommand(rosterRemoveCmd)
}

func runRosterList(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	store, closeRoster, err := app.OpenRoster(cfg)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer closeRoster()

	ctx := cmd.Context()
	nicks, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	if len(nicks) == 0 {
		fmt.Fprintln(os.Stdout, "No players tracked yet. Run 'faceitwatch roster add <nickname>' to add one.")
		return nil
	}

	var fc *faceit.Client
	if rosterResolve {
		if err := cfg.RequireFaceit(); err != nil {
			return err
		}
		fc = app.NewFaceitClient(cfg)
	}

	entries := make([]report.RosterEntry, 0, len(nicks))
	for i, nick := range nicks {
		e := report.RosterEntry{Position: i + 1, Nickname: nick}
		if fc != nil {
			p, err := fc.GetPlayerByNickname(ctx, nick)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", nick, err)
			} else {
				e.PlayerID = p.PlayerID
				e.Level = p.Games.CS2.SkillLevel
				e.ELO = p.Games.CS2.FaceitELO
			}
		}
		entries = append(entries, e)
	}
	report.PrintRoster(os.Stdout, entries)
	return nil
}

func runRosterAdd(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	store, closeRoster, err := app.OpenRoster(cfg)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer closeRoster()

	var fc *faceit.Client
	if !rosterSkipCheck {
		if err := cfg.RequireFaceit(); err != nil {
			return err
		}
		fc = app.NewFaceitClient(cfg)
	}

	ctx := cmd.Context()
	tracked, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	for _, nick := range args {
		if slices.Contains(tracked, nick) {
			fmt.Fprintf(os.Stderr, "%s is already being tracked.\n", nick)
			continue
		}
		if fc != nil {
			if _, err := fc.GetPlayerByNickname(ctx, nick); err != nil {
				if errors.Is(err, faceit.ErrPlayerNotFound) {
					fmt.Fprintf(os.Stderr, "Player %s not found on FACEIT.\n", nick)
					continue
				}
				return fmt.Errorf("look up %s: %w", nick, err)
			}
		}
		if err := store.Add(ctx, nick); err != nil {
			if errors.Is(err, roster.ErrAlreadyTracked) {
				fmt.Fprintf(os.Stderr, "%s is already being tracked.\n", nick)
				continue
			}
			return err
		}
		tracked = append(tracked, nick)
		fmt.Fprintf(os.Stdout, "Added: %s\n", nick)
	}
	return nil
}

func runRosterRemove(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	store, closeRoster, err := app.OpenRoster(cfg)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer closeRoster()

	for _, nick := range args {
		if err := store.Remove(cmd.Context(), nick); err != nil {
			if errors.Is(err, roster.ErrNotTracked) {
				fmt.Fprintf(os.Stderr, "%s not found in the tracking list.\n", nick)
				continue
			}
			return err
		}
		fmt.Fprintf(os.Stdout, "Removed: %s\n", nick)
	}
	return nil
}
