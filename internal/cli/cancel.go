package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// NewCancelCommand groups the cancellation workflow commands.
func NewCancelCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cancel",
		Short:         "Request, approve and reject cancellations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCancelRequestCommand(opts))
	cmd.AddCommand(newCancelRequestOrderCommand(opts))
	cmd.AddCommand(newCancelApproveCommand(opts))
	cmd.AddCommand(newCancelRejectCommand(opts))
	cmd.AddCommand(newCancelDismissCommand(opts))
	cmd.AddCommand(newCancelListCommand(opts))
	return cmd
}

func newCancelRequestCommand(opts *RootOptions) *cobra.Command {
	var motivo string
	cmd := &cobra.Command{
		Use:           "request <order-id> <item-index>",
		Short:         "Request cancellation of one item",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, "item index must be a number")
			}
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				req, err := eng.RequestItemCancellation(ctx, args[0], index, motivo)
				if err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("anulacion %s pendiente de aprobacion", req.ID))
			})
		},
	}
	cmd.Flags().StringVar(&motivo, "motivo", "", "reason for the cancellation (required)")
	_ = cmd.MarkFlagRequired("motivo")
	return cmd
}

func newCancelRequestOrderCommand(opts *RootOptions) *cobra.Command {
	var motivo string
	cmd := &cobra.Command{
		Use:           "request-order <order-id>",
		Short:         "Request cancellation of the whole order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				req, err := eng.RequestOrderCancellation(ctx, args[0], motivo)
				if err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("anulacion %s pendiente de aprobacion", req.ID))
			})
		},
	}
	cmd.Flags().StringVar(&motivo, "motivo", "", "reason for the cancellation (required)")
	_ = cmd.MarkFlagRequired("motivo")
	return cmd
}

func newCancelApproveCommand(opts *RootOptions) *cobra.Command {
	var comentario string
	cmd := &cobra.Command{
		Use:           "approve <request-id>",
		Short:         "Approve a pending cancellation (admin/operaciones)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				req, err := eng.GetCancellation(ctx, args[0])
				if err != nil {
					return err
				}
				var order *doc.Order
				if req.WholeOrder() {
					order, _, err = eng.ApproveOrderCancellation(ctx, args[0], comentario)
				} else {
					order, _, err = eng.ApproveItemCancellation(ctx, args[0], comentario)
				}
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&comentario, "comentario", "", "resolution comment")
	return cmd
}

func newCancelRejectCommand(opts *RootOptions) *cobra.Command {
	var motivo string
	cmd := &cobra.Command{
		Use:           "reject <request-id>",
		Short:         "Reject a pending cancellation (admin/operaciones)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				req, err := eng.GetCancellation(ctx, args[0])
				if err != nil {
					return err
				}
				var order *doc.Order
				if req.WholeOrder() {
					order, _, err = eng.RejectOrderCancellation(ctx, args[0], motivo)
				} else {
					order, _, err = eng.RejectItemCancellation(ctx, args[0], motivo)
				}
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&motivo, "motivo", "", "reason for the rejection (required)")
	_ = cmd.MarkFlagRequired("motivo")
	return cmd
}

func newCancelDismissCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dismiss <order-id> <item-index>",
		Short:         "Acknowledge a rejected item cancellation",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, "item index must be a number")
			}
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				order, err := eng.DismissRejection(ctx, args[0], index)
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	return cmd
}

func newCancelListCommand(opts *RootOptions) *cobra.Command {
	var orderID string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List pending cancellation requests",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				reqs, err := eng.PendingCancellations(ctx, orderID)
				if err != nil {
					return err
				}
				if out.Format == "json" {
					return out.Success(reqs)
				}
				for _, r := range reqs {
					target := "orden completa"
					if !r.WholeOrder() {
						target = fmt.Sprintf("item %d", *r.ItemIndex)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  por %s: %s\n",
						r.ID, r.OrdenID, target, r.Solicitante, r.Motivo)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orderID, "order", "", "filter by order id")
	return cmd
}
