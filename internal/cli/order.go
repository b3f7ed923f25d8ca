package cli

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// withEngine runs fn against a fully wired engine and renders the result.
// Errors are emitted as structured JSON when that format is selected;
// the exit error carries the failure to main either way.
func withEngine(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error) error {
	engine, cfg, closeStore, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	out := NewFormatter(opts.Format, cfg.Locale, cmd.OutOrStdout())
	if err := fn(cmd.Context(), engine, out); err != nil {
		if opts.Format == "json" {
			_ = out.Error(err)
		}
		return WrapExitError(ExitFailure, "command failed", err)
	}
	return nil
}

// NewOrderCommand groups the order lifecycle commands.
func NewOrderCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "order",
		Short:         "Create and mutate orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newOrderCreateCommand(opts))
	cmd.AddCommand(newOrderAddCommand(opts))
	cmd.AddCommand(newOrderRemoveCommand(opts))
	cmd.AddCommand(newOrderSendCommand(opts))
	cmd.AddCommand(newOrderDispatchCommand(opts))
	cmd.AddCommand(newOrderBillCommand(opts))
	cmd.AddCommand(newOrderPayCommand(opts))
	cmd.AddCommand(newOrderShowCommand(opts))
	return cmd
}

func newOrderCreateCommand(opts *RootOptions) *cobra.Command {
	var mesa, mesero, dish, comments string
	var qty int
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Open a new order for a table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				var items []pos.ItemSpec
				if dish != "" {
					items = append(items, pos.ItemSpec{
						PlatilloID:  dish,
						Cantidad:    qty,
						Comentarios: comments,
					})
				}
				order, err := eng.CreateOrder(ctx, mesa, mesero, items)
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&mesa, "mesa", "", "table reference (required)")
	cmd.Flags().StringVar(&mesero, "mesero", "", "server reference (required)")
	cmd.Flags().StringVar(&dish, "dish", "", "first item dish id (optional)")
	cmd.Flags().IntVar(&qty, "qty", 1, "first item quantity")
	cmd.Flags().StringVar(&comments, "comments", "", "first item comments")
	_ = cmd.MarkFlagRequired("mesa")
	_ = cmd.MarkFlagRequired("mesero")
	return cmd
}

func newOrderAddCommand(opts *RootOptions) *cobra.Command {
	var dish, comments, priceOverride, promo string
	var qty int
	cmd := &cobra.Command{
		Use:           "add <order-id>",
		Short:         "Add an item to a pending order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				spec := pos.ItemSpec{
					PlatilloID:  dish,
					Cantidad:    qty,
					Comentarios: comments,
					PromocionID: promo,
				}
				if priceOverride != "" {
					p, err := decimal.NewFromString(priceOverride)
					if err != nil {
						return NewExitError(ExitCommandError, "bad --price value")
					}
					spec.PrecioOverride = &p
				}
				order, err := eng.AddItem(ctx, args[0], spec)
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&dish, "dish", "", "dish id (required)")
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity")
	cmd.Flags().StringVar(&comments, "comments", "", "free-text comments")
	cmd.Flags().StringVar(&priceOverride, "price", "", "unit price override (promotions)")
	cmd.Flags().StringVar(&promo, "promo", "", "promotion reference")
	_ = cmd.MarkFlagRequired("dish")
	return cmd
}

func newOrderRemoveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove <order-id> <item-index>",
		Short:         "Remove a never-sent item outright",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, "item index must be a number")
			}
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				order, err := eng.RemoveItemDirect(ctx, args[0], index)
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	return cmd
}

func newOrderSendCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "send <order-id>",
		Short:         "Send unsent items to kitchen/bar and deduct stock",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				order, err := eng.SendToKitchenBar(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	return cmd
}

func newOrderDispatchCommand(opts *RootOptions) *cobra.Command {
	var station string
	cmd := &cobra.Command{
		Use:           "dispatch <order-id> <item-index>",
		Short:         "Mark an item as picked up by its station",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, "item index must be a number")
			}
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				order, err := eng.MarkDispatched(ctx, args[0], index, doc.Station(station))
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&station, "station", "", "station (bar|cocina) (required)")
	_ = cmd.MarkFlagRequired("station")
	return cmd
}

func newOrderBillCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bill <order-id>",
		Short:         "Snapshot active items into a ticket and send to billing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				_, ticket, err := eng.SendToBilling(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(ticket)
			})
		},
	}
	return cmd
}

func newOrderPayCommand(opts *RootOptions) *cobra.Command {
	var metodo, recibido string
	cmd := &cobra.Command{
		Use:           "pay <order-id>",
		Short:         "Mark a billed order as paid",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				pago := doc.PaymentInfo{Metodo: metodo, Cajero: opts.User}
				if recibido != "" {
					r, err := decimal.NewFromString(recibido)
					if err != nil {
						return NewExitError(ExitCommandError, "bad --recibido value")
					}
					pago.Recibido = r
				}
				order, err := eng.MarkPaid(ctx, args[0], pago)
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	cmd.Flags().StringVar(&metodo, "metodo", "efectivo", "payment method")
	cmd.Flags().StringVar(&recibido, "recibido", "", "amount received")
	return cmd
}

func newOrderShowCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <order-id>",
		Short:         "Print an order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, cmd, func(ctx context.Context, eng *pos.Engine, out *OutputFormatter) error {
				order, _, err := eng.GetOrder(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(order)
			})
		},
	}
	return cmd
}
