package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		pg, err := db.NewPostgresService(cfg.DB, log)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer pg.Close()
		if err := pg.AutoMigrateAll(); err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.DB.Driver)
		return nil
	},
}
