package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/app"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/config"
)

var (
	verbose bool
	cfg     *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tarotluna",
	Short: "Tarot readings from the Tarot Luna bot in your terminal",
	Long: `Tarot Luna draws cards from a Rider-Waite-Smith deck, reveals them one by one and
asks the Tarot Luna backend for an interpretation.

The Telegram launch data is read from TAROT_INIT_DATA and the backend address from
TAROT_API_URL or the api_url setting in the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded

		log.SetLevel(cfg.Level())
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// newApp builds the application for commands that talk to the backend
func newApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cfg, cmd.OutOrStdout())
}

// loadAccount builds the application and signs the user in
func loadAccount(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	a.Host.Ready()

	if err := a.Account.Load(ctx); err != nil {
		if errors.Is(err, common.ErrNotInHostEnvironment) {
			return nil, fmt.Errorf("%w: set TAROT_INIT_DATA to the Telegram launch data", err)
		}
		return nil, err
	}
	return a, nil
}

// commandContext is cancelled on Ctrl+C
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
