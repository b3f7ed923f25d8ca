package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// NewInventoryCommand groups the inventory ledger commands.
func NewInventoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inventory",
		Short:         "Record movements and query stock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newInventoryMoveCommand(opts))
	cmd.AddCommand(newInventoryStockCommand(opts))
	cmd.AddCommand(newInventoryMovementsCommand(opts))
	return cmd
}

func newInventoryMoveCommand(opts *RootOptions) *cobra.Command {
	var cantidad, unidad, motivo string
	cmd := &cobra.Command{
		Use:           "move <ingredient-id>",
		Short:         "Append one signed stock movement (positive=entrada)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := decimal.NewFromString(cantidad)
			if err != nil {
				return NewExitError(ExitCommandError, "bad --cantidad value")
			}
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				mov, err := eng.RecordMovement(ctx, args[0], qty, unidad, motivo, "")
				if err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("movimiento %s: %s %s %s",
					mov.ID, mov.IngredienteID, mov.Cantidad, mov.Unidad))
			})
		},
	}
	cmd.Flags().StringVar(&cantidad, "cantidad", "", "signed quantity (required)")
	cmd.Flags().StringVar(&unidad, "unidad", "", "unit of measure (required)")
	cmd.Flags().StringVar(&motivo, "motivo", "", "reason (required)")
	_ = cmd.MarkFlagRequired("cantidad")
	_ = cmd.MarkFlagRequired("unidad")
	_ = cmd.MarkFlagRequired("motivo")
	return cmd
}

func newInventoryStockCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stock <ingredient-id>",
		Short:         "Current stock (sum of all movements)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				stock, err := eng.CurrentStock(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("%s: %s", args[0], stock))
			})
		},
	}
	return cmd
}

func newInventoryMovementsCommand(opts *RootOptions) *cobra.Command {
	var since string
	cmd := &cobra.Command{
		Use:           "movements <ingredient-id>",
		Short:         "List movements of an ingredient",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				movs, err := eng.Movements(ctx, args[0])
				if err != nil {
					return err
				}
				if since != "" {
					cutoff, err := time.Parse("2006-01-02", since)
					if err != nil {
						return NewExitError(ExitCommandError, "bad --since value, want YYYY-MM-DD")
					}
					filtered := movs[:0]
					for _, m := range movs {
						if !m.Fecha.Before(cutoff) {
							filtered = append(filtered, m)
						}
					}
					movs = filtered
				}
				if out.Format == "json" {
					return out.Success(movs)
				}
				for _, m := range movs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %10s %-8s %s (%s)\n",
						m.Fecha.Format(time.RFC3339), m.Cantidad, m.Unidad, m.Motivo, m.Actor)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only movements on/after this date")
	return cmd
}
