package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradeplan/internal/models"
	"tradeplan/internal/stream"
	transporthttp "tradeplan/internal/transport/http"
)

// addServeCommand adds the API/share server command.
func addServeCommand(rootCmd *cobra.Command, app *App) {
	var (
		addr       string
		streamAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the plan API, share pages and live feed",
		Long: `Serve the HTTP surface: the plan REST API, the share pages with their
certificate cards, the platform webhook, and the websocket plan feed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := app.ensureBound(ctx); err != nil {
				return err
			}

			hub := stream.NewHub(app.Logger)
			app.Book.OnChange(func(list []models.Plan) {
				hub.Broadcast(list)
			})

			router := transporthttp.New(app.Book, transporthttp.ShareConfig{
				AppURL:         app.Config.Share.AppURL,
				StaticImageURL: app.Config.Share.StaticImageURL,
			}, app.Logger)

			feed := stream.NewServer(hub, streamAddr)

			errCh := make(chan error, 2)
			go func() {
				app.Logger.Info().Str("addr", addr).Msg("API server listening")
				errCh <- router.Listen(addr)
			}()
			go func() {
				app.Logger.Info().Str("addr", streamAddr).Msg("Plan feed listening")
				errCh <- feed.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				app.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := feed.Shutdown(shutdownCtx); err != nil {
				app.Logger.Warn().Err(err).Msg("Feed shutdown error")
			}
			if err := router.Shutdown(shutdownCtx); err != nil {
				app.Logger.Warn().Err(err).Msg("API shutdown error")
			}
			app.Book.Release()
			return app.Store.Close()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.Config.Server.Addr, "API listen address")
	cmd.Flags().StringVar(&streamAddr, "stream-addr", app.Config.Server.StreamAddr, "plan feed listen address")

	rootCmd.AddCommand(cmd)
}
