package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage journal accounts",
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Mark an account as verified without an email link",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := configureLogging(cfg); err != nil {
			return err
		}

		ctx := context.Background()
		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		username := args[0]
		outcome, err := newApplication(cfg, b).accounts.VerifyUsername(ctx, username)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return fmt.Errorf("user %q not found", username)
			}
			return err
		}

		fmt.Printf("username: %s\n", username)
		fmt.Printf("status: %s\n", outcome)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userVerifyCmd)
	rootCmd.AddCommand(userCmd)
}
