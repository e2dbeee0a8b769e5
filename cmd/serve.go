package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/pable/faceitwatch/internal/app"
)

var serveNoStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the poll loop",
	Long: "Run the bot until interrupted. Monitoring starts immediately unless " +
		"--no-start is given; operators control it with /start_monitoring and /stop_monitoring.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoStart, "no-start", false, "wait for /start_monitoring instead of starting right away")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.RequireFaceit(); err != nil {
		return err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	fxApp := fx.New(
		fx.Supply(cfg, log, app.Options{AutoStart: !serveNoStart}),
		app.Module,
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	fxApp.Run()
	return nil
}
