package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportURL string
	reportOut string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full competitor report for a company website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "report")
		if err != nil {
			return err
		}
		defer env.Close()

		report, runErr := env.Pipeline.Run(ctx, reportURL)

		out := cmd.OutOrStdout()
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				return eris.Wrap(err, "create report file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}

		if runErr != nil {
			return runErr
		}
		zap.L().Info("report complete",
			zap.String("company", report.Company.CompanyName),
			zap.Int("competitors", len(report.Competitors)),
		)
		return nil
	},
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func init() {
	reportCmd.Flags().StringVar(&reportURL, "url", "", "company website URL (required)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "write the report to this file instead of stdout")
	_ = reportCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(reportCmd)
}
