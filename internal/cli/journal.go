package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradeplan/internal/models"
)

// addJournalCommands adds journal review commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Review closed plans",
		Long:  "Review your closed plans and track how often you stick to winners.",
	}

	cmd.AddCommand(newJournalHistoryCmd(app))
	cmd.AddCommand(newJournalStatsCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show closed plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.ensureBound(ctx); err != nil {
				return err
			}
			app.waitForSync()

			closed := app.Book.Closed()
			if limit > 0 && len(closed) > limit {
				closed = closed[:limit]
			}

			if output.IsJSON() {
				return output.JSON(closed)
			}

			if len(closed) == 0 {
				output.Info("No closed plans yet.")
				return nil
			}

			table := NewTable(output, "Closed", "Pair", "Side", "Entry", "Result", "R/R")
			for _, p := range closed {
				closedAt := "-"
				if p.ClosedAt != nil {
					closedAt = FormatDateTime(*p.ClosedAt)
				}
				table.AddRow(
					closedAt,
					p.Pair,
					output.Direction(string(p.Direction)),
					p.Entry,
					output.Result(string(p.Result)),
					FormatRiskReward(p.RiskReward),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum plans to show")

	return cmd
}

func newJournalStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show win/loss summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.ensureBound(ctx); err != nil {
				return err
			}
			app.waitForSync()

			var wins, losses int
			for _, p := range app.Book.Closed() {
				switch p.Result {
				case models.ResultWin:
					wins++
				case models.ResultLoss:
					losses++
				}
			}
			open := len(app.Book.Active())
			closed := wins + losses

			winRate := 0.0
			if closed > 0 {
				winRate = float64(wins) / float64(closed) * 100
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"open":    open,
					"closed":  closed,
					"wins":    wins,
					"losses":  losses,
					"winRate": winRate,
				})
			}

			output.Bold("Journal Summary")
			output.Printf("  Open plans:   %d\n", open)
			output.Printf("  Closed plans: %d\n", closed)
			output.Printf("  Wins/Losses:  %d/%d (%.0f%% win rate)\n", wins, losses, winRate)
			return nil
		},
	}
}
