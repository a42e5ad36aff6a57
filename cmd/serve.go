package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	a, err := app.NewWithConfig(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Start()
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Log.Error("server stopped", "error", err)
		return err
	}
	a.Log.Info("server stopped")
	return nil
}
