package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradeplan/internal/models"
	"tradeplan/internal/risk"
)

// addRiskCommands adds position-sizing calculator commands.
func addRiskCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Position sizing calculator",
		Long:  "Derive position size and risk-reward from entry, stop and target.",
	}

	cmd.AddCommand(newRiskSizeCmd(app))

	rootCmd.AddCommand(cmd)
}

func newRiskSizeCmd(app *App) *cobra.Command {
	var (
		entry       string
		stopLoss    string
		takeProfit  string
		riskPercent string
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Calculate position size for a trade setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			balance := app.Config.App.AccountBalance
			size := risk.PositionSizeStr(entry, stopLoss, riskPercent, balance)
			rr := risk.RiskRewardStr(entry, stopLoss, takeProfit)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"positionSize": size,
					"riskReward":   rr,
					"balance":      balance,
				})
			}

			output.Bold("Position Sizing")
			output.Printf("  Balance:       %s\n", FormatSize(balance))
			output.Printf("  Position size: %s\n", FormatSize(size))
			output.Printf("  Risk/Reward:   %s\n", FormatRiskReward(rr))
			if size == 0 {
				output.Println()
				output.Warning("Size is zero: check that entry and stop differ and all inputs are numbers.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "entry price (required)")
	cmd.Flags().StringVar(&stopLoss, "sl", "", "stop loss price (required)")
	cmd.Flags().StringVar(&takeProfit, "tp", "", "take profit price")
	cmd.Flags().StringVar(&riskPercent, "risk", "1", "risk percent of balance")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("sl")

	return cmd
}

// addPlanCommands adds plan lifecycle commands.
func addPlanCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Trade plan management",
		Long:  "Create, list, close and delete trade plans.",
	}

	cmd.AddCommand(newPlanAddCmd(app))
	cmd.AddCommand(newPlanListCmd(app))
	cmd.AddCommand(newPlanCloseCmd(app))
	cmd.AddCommand(newPlanDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newPlanAddCmd(app *App) *cobra.Command {
	var (
		draft     models.Draft
		direction string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Lock in a new trade plan",
		Long:  "Create a plan with frozen position size and risk-reward. Requires acknowledging your trading rules with --ack.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			dir, err := models.ParseDirection(direction)
			if err != nil {
				return err
			}
			draft.Direction = dir

			if err := app.ensureBound(ctx); err != nil {
				return err
			}

			plan, err := app.Book.Create(ctx, draft)
			if err != nil {
				output.Error("Failed to save plan: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(plan)
			}

			output.Success("Plan locked in: %s", plan.ID)
			output.Printf("  %s %s @ %s\n", plan.Pair, output.Direction(string(plan.Direction)), plan.Entry)
			output.Printf("  Stop:  %s  Target: %s\n", plan.StopLoss, plan.TakeProfit)
			output.Printf("  Size:  %s  R/R: %s\n", FormatSize(plan.PositionSize), FormatRiskReward(plan.RiskReward))
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Pair, "pair", "", "trading pair, e.g. BTC/USDT (required)")
	cmd.Flags().StringVar(&direction, "direction", "long", "long or short")
	cmd.Flags().StringVar(&draft.Entry, "entry", "", "entry price (required)")
	cmd.Flags().StringVar(&draft.StopLoss, "sl", "", "stop loss price (required)")
	cmd.Flags().StringVar(&draft.TakeProfit, "tp", "", "take profit price")
	cmd.Flags().StringVar(&draft.RiskPercent, "risk", "1", "risk percent of balance")
	cmd.Flags().StringVar(&draft.Thesis, "thesis", "", "why this trade")
	cmd.Flags().BoolVar(&draft.RulesAcknowledged, "ack", false, "acknowledge your trading rules")
	cmd.MarkFlagRequired("pair")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("sl")

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trade plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.ensureBound(ctx); err != nil {
				return err
			}
			app.waitForSync()

			list := app.Book.Active()
			if all {
				list = app.Book.Plans()
			}

			if output.IsJSON() {
				return output.JSON(list)
			}

			if len(list) == 0 {
				output.Info("No plans yet. Lock one in with 'tradeplan plan add'.")
				return nil
			}

			table := NewTable(output, "ID", "Pair", "Side", "Entry", "Stop", "Target", "Size", "R/R", "Status", "Age")
			for _, p := range list {
				table.AddRow(
					TruncateString(p.ID, 12),
					p.Pair,
					output.Direction(string(p.Direction)),
					p.Entry,
					p.StopLoss,
					p.TakeProfit,
					FormatSize(p.PositionSize),
					FormatRiskReward(p.RiskReward),
					string(p.Status),
					FormatAge(p.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include closed plans")

	return cmd
}

func newPlanCloseCmd(app *App) *cobra.Command {
	var result string

	cmd := &cobra.Command{
		Use:   "close <plan-id>",
		Short: "Close a plan with its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			res, err := models.ParseResult(result)
			if err != nil {
				return err
			}

			if err := app.ensureBound(ctx); err != nil {
				return err
			}

			if err := app.Book.Close(ctx, args[0], res); err != nil {
				output.Error("Failed to close plan: %v", err)
				return err
			}

			output.Success("Plan %s closed as %s", args[0], output.Result(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&result, "result", "", "win or loss (required)")
	cmd.MarkFlagRequired("result")

	return cmd
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.ensureBound(ctx); err != nil {
				return err
			}

			if err := app.Book.Remove(ctx, args[0]); err != nil {
				output.Error("Failed to delete plan: %v", err)
				return err
			}

			output.Success("Plan %s deleted", args[0])
			return nil
		},
	}
}
