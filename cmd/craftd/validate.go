package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gravitas-games/craftworks/internal/catalog"
	"github.com/gravitas-games/craftworks/internal/config"
	"github.com/gravitas-games/craftworks/internal/server"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the server config and catalog without starting",
	Long:  `Loads the server config and its catalog, then builds every inventory and station to catch broken references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(resolveConfigPath())
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		sess, err := server.NewSession("validate", cfg, cat, discardLogger())
		if err != nil {
			return err
		}
		sess.Close()

		cmd.Printf("ok: %d items, %d recipes, %d station types, %d inventories, %d stations\n",
			cat.Items.Count(), cat.Recipes.Count(), len(cat.StationTypes),
			len(cfg.Inventories), len(cfg.Stations))
		return nil
	},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
