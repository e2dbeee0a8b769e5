package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/faceitwatch/internal/app"
	"github.com/pable/faceitwatch/internal/model"
	"github.com/pable/faceitwatch/internal/monitor"
	"github.com/pable/faceitwatch/internal/report"
	"github.com/pable/faceitwatch/internal/telegram"
)

var checkSend bool

// checkCmd runs a single poll cycle over the roster.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one poll cycle and print the latest matches",
	Long: "Resolve every tracked player, look up their latest match and print one " +
		"scoreboard per distinct match. With --send the scoreboards go to the Telegram chat instead.",
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkSend, "send", false, "deliver to the configured Telegram chat")
}

// writerDelivery prints notifications instead of sending them.
type writerDelivery struct {
	w io.Writer
}

func (d writerDelivery) Send(ctx context.Context, channelID, message string) error {
	_, err := fmt.Fprintln(d.w, message)
	return err
}

func renderTable(r model.MatchResult) string {
	var b strings.Builder
	report.PrintResult(&b, r)
	return b.String()
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.RequireFaceit(); err != nil {
		return err
	}

	store, closeRoster, err := app.OpenRoster(cfg)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer closeRoster()

	fc := app.NewFaceitClient(cfg)
	pcfg := monitor.Config{
		Roster:     store,
		Resolver:   fc,
		Detector:   app.NewDetector(cfg, fc, log),
		Aggregator: app.NewAggregator(cfg, fc, log),
		Render:     renderTable,
		Delivery:   writerDelivery{w: os.Stdout},
		Logger:     log,
	}
	if checkSend {
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		bot, err := telegram.New(cfg.TelegramToken, log)
		if err != nil {
			return err
		}
		pcfg.Render = report.RenderMatch
		pcfg.Delivery = bot
		pcfg.ChannelID = cfg.ChatID
	}

	n, err := monitor.NewPoller(pcfg).CheckOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d match(es) reported.\n", n)
	return nil
}
