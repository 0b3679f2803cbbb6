package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the MySQL schema migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(_ *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := configureLogging(cfg); err != nil {
			return err
		}
		if cfg.Storage.Driver != config.StorageMySQL {
			return errors.New("migrations only apply to the mysql storage driver")
		}

		ctx := context.Background()
		db, err := openMySQL(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repository.Migrate(ctx, db, command); err != nil {
			return fmt.Errorf("migrate %s: %w", command, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
