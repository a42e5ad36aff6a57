package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "roadmap",
	Short:         "AI learning roadmap backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
}

// loadConfig applies --config before reading the environment.
func loadConfig(cmd *cobra.Command) (*logger.Logger, app.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("CONFIG_FILE", p); err != nil {
			return nil, app.Config{}, err
		}
	}
	log, err := logger.FromEnv()
	if err != nil {
		return nil, app.Config{}, err
	}
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}
