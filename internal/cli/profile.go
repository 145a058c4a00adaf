package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// addProfileCommands adds user profile commands.
func addProfileCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "User profile",
	}

	cmd.AddCommand(newProfileShowCmd(app))

	rootCmd.AddCommand(cmd)
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			session, err := app.Gate.Wait(ctx)
			if err != nil {
				return err
			}
			if err := app.Profiles.Touch(ctx, session); err != nil {
				return err
			}

			profile, err := app.Profiles.Lookup(ctx, session.UserID)
			if err != nil {
				output.Error("Failed to load profile: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(profile)
			}

			output.Bold("Profile")
			output.Printf("  User:     %s\n", session.UserID)
			if profile.Username != "" {
				output.Printf("  Username: @%s\n", profile.Username)
			}
			if profile.DisplayName != "" {
				output.Printf("  Name:     %s\n", profile.DisplayName)
			}
			if profile.WalletAddress != "" {
				output.Printf("  Wallet:   %s\n", profile.WalletAddress)
			}
			output.Printf("  First seen: %s\n", FormatDate(profile.CreatedAt))
			output.Printf("  Last seen:  %s\n", FormatAge(profile.LastSeenAt))
			return nil
		},
	}
}
