package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/common"
	"github.com/i474232898/co2-offset-dashboard/internal/config"
	"github.com/i474232898/co2-offset-dashboard/internal/logging"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Load products from a YAML seed into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Init(cfg.LogLevel)

			cat, err := catalog.Open(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer cat.Close()

			n, err := importSeed(cmd.Context(), cat, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s products into %s\n", common.FormatNumber(int64(n)), cfg.DBPath)
			return nil
		},
	}
}

func importSeed(ctx context.Context, cat *catalog.SQLiteStore, path string) (int, error) {
	products, err := catalog.LoadSeed(path)
	if err != nil {
		return 0, err
	}
	n, err := cat.Import(ctx, products)
	if err != nil {
		return n, err
	}
	log.Info().Str("seed", path).Int("products", n).Msg("catalog seeded")
	return n, nil
}
