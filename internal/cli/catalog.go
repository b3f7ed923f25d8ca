package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/catalog"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// NewCatalogCommand groups menu catalog commands. Catalog seeding talks
// to the store directly; it is back-office setup, not a terminal action.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Load and inspect the menu catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCatalogLoadCommand(opts))
	return cmd
}

func newCatalogLoadCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "load <catalog-file>",
		Short:         "Seed dishes, ingredients and recipes from a YAML file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			file, err := catalog.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err)
			}

			store, err := docstore.Open(cfg.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("error closing database", "error", closeErr)
				}
			}()

			if err := catalog.Apply(cmd.Context(), store, file); err != nil {
				return WrapExitError(ExitFailure, "failed to seed catalog", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog loaded: %d platillos, %d ingredientes\n",
				len(file.Platillos), len(file.Ingredientes))
			return nil
		},
	}
	return cmd
}
