package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// NewClosureCommand groups the Z-closure commands.
func NewClosureCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "closure",
		Short:         "Generate and list daily Z-closures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newClosureGenerateCommand(opts))
	cmd.AddCommand(newClosureListCommand(opts))
	return cmd
}

func newClosureGenerateCommand(opts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:           "generate <date>",
		Short:         "Snapshot a day's paid tickets into a Z-closure",
		Long: `Generate an immutable Z-closure over the paid tickets of one
venue-local calendar day (YYYY-MM-DD).

The engine allows repeated closures for the same date; this command
refuses to duplicate one unless --force is given. An empty day still
produces a valid closure, with a warning.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				existing, err := eng.ClosuresForDate(ctx, args[0])
				if err != nil {
					return err
				}
				if len(existing) > 0 && !force {
					return NewExitError(ExitFailure, fmt.Sprintf(
						"date %s already has closure #%d; pass --force to generate another",
						args[0], existing[0].Numero))
				}

				closure, err := eng.GenerateClosure(ctx, args[0])
				if err != nil {
					return err
				}
				if closure.Empty() {
					slog.Warn("no sales for period", "fecha", closure.Fecha)
				}
				return out.Success(closure)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "allow a second closure for the same date")
	return cmd
}

func newClosureListCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List all Z-closures",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				closures, err := eng.Closures(ctx)
				if err != nil {
					return err
				}
				if out.Format == "json" {
					return out.Success(closures)
				}
				for i := range closures {
					fmt.Fprint(cmd.OutOrStdout(), out.RenderClosure(&closures[i]))
				}
				return nil
			})
		},
	}
	return cmd
}
