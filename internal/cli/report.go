package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// withEngineConfig is withEngine for commands that also need the loaded
// config, here for the venue timezone that anchors date-range parsing.
func withEngineConfig(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, eng *pos.Engine, cfg *Config, out *OutputFormatter) error) error {
	engine, cfg, closeStore, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	out := NewFormatter(opts.Format, cfg.Locale, cmd.OutOrStdout())
	if err := fn(cmd.Context(), engine, cfg, out); err != nil {
		if opts.Format == "json" {
			_ = out.Error(err)
		}
		return WrapExitError(ExitFailure, "command failed", err)
	}
	return nil
}

// NewReportCommand groups the read-only date-range reports.
func NewReportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "report",
		Short:         "Read-only reports over a date range",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newReportOrdersCommand(opts))
	cmd.AddCommand(newReportTicketsCommand(opts))
	cmd.AddCommand(newReportMovementsCommand(opts))
	return cmd
}

// parseRange resolves --from/--to (YYYY-MM-DD, venue-local) into the
// half-open UTC interval [from, to+1d).
func parseRange(from, to, timezone string) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, time.Time{}, NewExitError(ExitCommandError, "bad timezone in config")
	}
	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, NewExitError(ExitCommandError, "bad --from value, want YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, NewExitError(ExitCommandError, "bad --to value, want YYYY-MM-DD")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func newReportOrdersCommand(opts *RootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:           "orders",
		Short:         "Orders created in a date range",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngineConfig(opts, cmd, func(ctx context.Context, eng *pos.Engine, cfg *Config, out *OutputFormatter) error {
				start, end, err := parseRange(from, to, cfg.Timezone)
				if err != nil {
					return err
				}
				orders, err := eng.OrdersBetween(ctx, start, end)
				if err != nil {
					return err
				}
				if out.Format == "json" {
					return out.Success(orders)
				}
				for i := range orders {
					o := &orders[i]
					fmt.Fprintf(cmd.OutOrStdout(), "#%-5d %s  mesa %-4s %-13s %10s\n",
						o.Numero, o.FechaCreacion.Format("2006-01-02 15:04"), o.Mesa, o.Estado, o.Total)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "range end, inclusive, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newReportTicketsCommand(opts *RootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:           "tickets",
		Short:         "Tickets issued in a date range",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngineConfig(opts, cmd, func(ctx context.Context, eng *pos.Engine, cfg *Config, out *OutputFormatter) error {
				start, end, err := parseRange(from, to, cfg.Timezone)
				if err != nil {
					return err
				}
				tickets, err := eng.TicketsBetween(ctx, start, end)
				if err != nil {
					return err
				}
				if out.Format == "json" {
					return out.Success(tickets)
				}
				for i := range tickets {
					t := &tickets[i]
					fmt.Fprintf(cmd.OutOrStdout(), "orden #%-5d %s  %-8s %10s\n",
						t.NumeroOrden, t.FechaEmision.Format("2006-01-02 15:04"), t.Estado, t.Total)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "range end, inclusive, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newReportMovementsCommand(opts *RootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:           "movements",
		Short:         "Inventory movements in a date range",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngineConfig(opts, cmd, func(ctx context.Context, eng *pos.Engine, cfg *Config, out *OutputFormatter) error {
				start, end, err := parseRange(from, to, cfg.Timezone)
				if err != nil {
					return err
				}
				movs, err := eng.MovementsBetween(ctx, start, end)
				if err != nil {
					return err
				}
				if out.Format == "json" {
					return out.Success(movs)
				}
				for i := range movs {
					m := &movs[i]
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s %10s %-8s %s\n",
						m.Fecha.Format("2006-01-02 15:04"), m.IngredienteID, m.Cantidad, m.Unidad, m.Motivo)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "range end, inclusive, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
