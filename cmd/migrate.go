package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and audit log partitions, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err == nil {
				defer sqlDB.Close()
			}

			migrator, err := newMigrator(db, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(contextOrBackground(cmd.Context()), 5*time.Minute)
			defer cancel()
			if err := migrator.Run(ctx); err != nil {
				return err
			}
			log.Info().Msg("migration finished")
			return nil
		},
	}
}
