package cli

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradeplan/internal/config"
	"tradeplan/internal/docstore"
	"tradeplan/internal/identity"
	"tradeplan/internal/logging"
	"tradeplan/internal/plans"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-03-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    docstore.Store
	Book     *plans.Book
	Profiles *plans.Profiles
	Gate     *identity.Gate
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	store, err := docstore.Open(cfg.Store, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open document store, falling back to in-memory")
		store = docstore.NewMemoryStore()
	}
	app.Store = store

	bookCfg := plans.DefaultBookConfig()
	bookCfg.AppID = cfg.App.ID
	bookCfg.AccountBalance = cfg.App.AccountBalance
	app.Book = plans.NewBookWithConfig(store, logger, bookCfg)
	app.Profiles = plans.NewProfiles(store, logger, cfg.App.ID)
	app.Gate = identity.NewGate(localProvider())

	rootCmd := &cobra.Command{
		Use:   "tradeplan",
		Short: "TradePlan - commit to your trades before you take them",
		Long: `TradePlan is a trading journal that locks in a plan before the trade.

Size a position from your risk, write down entry, stop and target, then
close each plan as a win or a loss. Plans are synced through the
configured document store and can be shared as commitment certificates.

Use 'tradeplan help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradeplan)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	addRiskCommands(rootCmd, app)
	addPlanCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addProfileCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// localProvider builds the identity provider for CLI use. With platform
// credentials in the environment the session carries them; otherwise the
// CLI operates as a local single user.
func localProvider() identity.Provider {
	fid, err := strconv.ParseInt(os.Getenv("TRADEPLAN_FID"), 10, 64)
	if err != nil || fid == 0 {
		return identity.NewStaticProvider(identity.Session{
			UserID:   "local",
			Username: envOr("TRADEPLAN_USERNAME", "local"),
		})
	}

	return identity.NewTokenProvider(identity.PlatformContext{
		FID:           fid,
		Username:      os.Getenv("TRADEPLAN_USERNAME"),
		DisplayName:   os.Getenv("TRADEPLAN_DISPLAY_NAME"),
		WalletAddress: os.Getenv("TRADEPLAN_WALLET"),
	}, os.Getenv("TRADEPLAN_TOKEN"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ensureBound waits for an established identity and binds the plan book
// to it.
func (app *App) ensureBound(ctx context.Context) error {
	session, err := app.Gate.Wait(ctx)
	if err != nil {
		return err
	}
	if app.Book.Bound() {
		return nil
	}
	if err := app.Book.Bind(ctx, session); err != nil {
		return err
	}
	return app.Profiles.Touch(ctx, session)
}

// waitForSync gives the subscription a moment to deliver the first
// snapshot before reading the view.
func (app *App) waitForSync() {
	time.Sleep(150 * time.Millisecond)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradePlan v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}
