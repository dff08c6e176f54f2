package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/store"
)

var seedFixtures string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sponsorship fixtures into a local SQLite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("seed"); err != nil {
			return err
		}
		return runSeed(cmd.Context(), seedFixtures)
	},
}

// runSeed loads the fixture file at path into the configured SQLite store.
func runSeed(ctx context.Context, path string) error {
	fx, err := store.LoadFixtures(path)
	if err != nil {
		return err
	}

	st, err := openSQLite(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Seed(ctx, fx); err != nil {
		return eris.Wrap(err, "seed store")
	}

	zap.L().Info("store seeded",
		zap.String("path", sqlitePath(cfg.Store)),
		zap.Int("brands", len(fx.Brands)),
		zap.Int("creators", len(fx.Creators)),
		zap.Int("sponsorships", len(fx.Sponsorships)),
	)
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFixtures, "fixtures", "internal/store/testdata/sponsorships.yaml", "YAML fixture file")
	rootCmd.AddCommand(seedCmd)
}
