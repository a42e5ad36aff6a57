package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	"github.com/yungbote/roadmap-backend/internal/domain/content"
)

var generateCmd = &cobra.Command{
	Use:   "generate [query]",
	Short: "Generate a roadmap (or an insight for one topic) and print it as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if v, _ := cmd.Flags().GetInt("insight-version"); v != 0 {
			cfg.Generator.InsightVersion = content.InsightVersion(v)
		}
		gen, err := app.NewGenerator(cmd.Context(), log, cfg)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		var out any
		if insight, _ := cmd.Flags().GetBool("insight"); insight {
			out, err = gen.GenerateInsight(cmd.Context(), query)
		} else {
			out, err = gen.GenerateRoadmap(cmd.Context(), query)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("insight", false, "Treat the argument as topic content and generate an insight")
	generateCmd.Flags().Int("insight-version", 0, "Insight shape: 1 or 2 (default from config)")
}
