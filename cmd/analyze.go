package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/classify"
	"github.com/sells-group/competitor-intel/internal/extract"
)

var analyzeURL string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a single company website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		if err := extract.ValidateURL(analyzeURL); err != nil {
			return err
		}

		text, err := newExtractor(cfg.Extract).Extract(ctx, analyzeURL)
		if err != nil {
			return err
		}
		client := newModelClient(cfg.Anthropic)
		profile, err := classify.New(client, cfg.Anthropic.HaikuModel, cfg.Classify.MaxTokens).Classify(ctx, analyzeURL, text)
		if err != nil {
			return err
		}

		zap.L().Info("company classified",
			zap.String("company", profile.CompanyName),
			zap.String("industry", profile.Industry),
		)
		return writeJSON(cmd.OutOrStdout(), profile)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "company website URL (required)")
	_ = analyzeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(analyzeCmd)
}
