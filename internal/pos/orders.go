package pos

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// ItemSpec describes an item to add to an order. The dish's display name,
// list price and station are snapshotted from the catalog at add time.
type ItemSpec struct {
	PlatilloID  string
	Cantidad    int
	Comentarios string

	// PrecioOverride replaces the list price (promotions). The original
	// list price is kept on the item for reporting.
	PrecioOverride *decimal.Decimal
	PromocionID    string
}

// CreateOrder opens a new order for a table and server, assigns the next
// sequential order number and persists it in estado pendiente.
func (e *Engine) CreateOrder(ctx context.Context, mesa, mesero string, items []ItemSpec) (*doc.Order, error) {
	if mesa == "" {
		return nil, newValidationError("mesa is required")
	}
	if mesero == "" {
		return nil, newValidationError("mesero is required")
	}

	built := make([]doc.OrderItem, 0, len(items))
	for _, spec := range items {
		item, err := e.buildItem(ctx, spec)
		if err != nil {
			return nil, err
		}
		built = append(built, *item)
	}

	numero, err := e.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order := &doc.Order{
		ID:            "orden:" + e.ids.NewID(),
		Type:          doc.TypeOrder,
		Numero:        numero,
		Mesa:          mesa,
		Mesero:        mesero,
		Items:         built,
		Estado:        doc.OrderPending,
		FechaCreacion: e.now().UTC(),
	}
	order.RecomputeTotal()

	if _, err := e.store.Save(ctx, order.ID, doc.PartitionOrders, order, docstore.NoRevision); err != nil {
		if docstore.IsConflict(err) {
			return nil, newConflictError(order.ID, err)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// AddItem appends an item to a pending order and recomputes the total.
func (e *Engine) AddItem(ctx context.Context, orderID string, spec ItemSpec) (*doc.Order, error) {
	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderPending {
		return nil, newInvalidStateError(orderID, -1,
			fmt.Sprintf("items can only be added while pendiente, estado is %s", order.Estado))
	}
	if order.AnulacionPendiente {
		return nil, newInvalidStateError(orderID, -1, "order has a pending full cancellation request")
	}

	item, err := e.buildItem(ctx, spec)
	if err != nil {
		return nil, err
	}
	order.Items = append(order.Items, *item)
	order.RecomputeTotal()

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveItemDirect deletes an item outright, bypassing the approval
// workflow. Only legal for items never sent to a preparation station and
// free of any cancellation machinery. Once any item in the order carries
// a pending request, positional removal is blocked: requests address
// items by index and deleting an entry would shift their targets.
func (e *Engine) RemoveItemDirect(ctx context.Context, orderID string, index int) (*doc.Order, error) {
	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderPending {
		return nil, newInvalidStateError(orderID, index,
			fmt.Sprintf("items can only be removed while pendiente, estado is %s", order.Estado))
	}
	if order.AnulacionPendiente {
		return nil, newInvalidStateError(orderID, index, "order has a pending full cancellation request")
	}
	item := order.Item(index)
	if item == nil {
		return nil, newNotFoundError(fmt.Sprintf("order %s has no item %d", orderID, index), nil)
	}
	if item.Enviado {
		return nil, newInvalidStateError(orderID, index,
			"item was sent to its station; removal requires the cancellation workflow")
	}
	if item.Estado != doc.ItemActive {
		return nil, newInvalidStateError(orderID, index,
			fmt.Sprintf("item is %s and cannot be removed directly", item.Estado))
	}
	for i := range order.Items {
		if order.Items[i].Estado == doc.ItemPendingCancellation {
			return nil, newInvalidStateError(orderID, index,
				"another item has a pending cancellation request; resolve it first")
		}
	}

	order.Items = append(order.Items[:index], order.Items[index+1:]...)
	order.RecomputeTotal()

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}
	return order, nil
}

// SendToKitchenBar makes the order's unsent items visible to their
// preparation stations and deducts their ingredient consumption from
// stock. The order stays pendiente. Calling it again only affects items
// added since the previous send.
func (e *Engine) SendToKitchenBar(ctx context.Context, orderID string) (*doc.Order, error) {
	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderPending {
		return nil, newInvalidStateError(orderID, -1,
			fmt.Sprintf("only pendiente orders can be sent, estado is %s", order.Estado))
	}
	if order.AnulacionPendiente {
		return nil, newInvalidStateError(orderID, -1, "order has a pending full cancellation request")
	}

	var sent []int
	for i := range order.Items {
		it := &order.Items[i]
		if !it.Enviado && it.Estado == doc.ItemActive {
			it.Enviado = true
			sent = append(sent, i)
		}
	}
	if len(sent) == 0 {
		// Idempotent: nothing new to send, no write.
		return order, nil
	}

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}

	// Ledger writes trail the order write; see the package note on the
	// multi-document gap.
	for _, i := range sent {
		it := &order.Items[i]
		if err := e.deductItem(ctx, order, it); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// MarkDispatched records that a station picked up an item. Re-dispatching
// an already dispatched item is a no-op.
func (e *Engine) MarkDispatched(ctx context.Context, orderID string, index int, station doc.Station) (*doc.Order, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(index)
	if item == nil {
		return nil, newNotFoundError(fmt.Sprintf("order %s has no item %d", orderID, index), nil)
	}
	if !item.Enviado {
		return nil, newInvalidStateError(orderID, index, "item has not been sent to its station")
	}
	if item.Estado == doc.ItemCancelled {
		return nil, newInvalidStateError(orderID, index, "item is anulado and must not be dispatched")
	}

	stamp := &doc.Dispatch{Actor: user.ID, Fecha: e.now().UTC()}
	switch station {
	case doc.StationBar:
		if item.DespachadoBar != nil {
			return order, nil
		}
		item.DespachadoBar = stamp
	case doc.StationKitchen:
		if item.DespachadoCocina != nil {
			return order, nil
		}
		item.DespachadoCocina = stamp
	default:
		return nil, newValidationError(fmt.Sprintf("unknown station %q", station))
	}

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}
	return order, nil
}

// SendToBilling snapshots the order's counted items into an immutable
// ticket and moves the order to enviado_cobro. Requires at least one
// non-annulled item.
func (e *Engine) SendToBilling(ctx context.Context, orderID string) (*doc.Order, *doc.Ticket, error) {
	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Estado != doc.OrderPending {
		return nil, nil, newInvalidStateError(orderID, -1,
			fmt.Sprintf("only pendiente orders can be billed, estado is %s", order.Estado))
	}
	if order.AnulacionPendiente {
		return nil, nil, newInvalidStateError(orderID, -1, "order has a pending full cancellation request")
	}
	for i := range order.Items {
		if order.Items[i].Estado == doc.ItemPendingCancellation {
			return nil, nil, newInvalidStateError(orderID, i,
				"item has a pending cancellation request; resolve it before billing")
		}
	}
	if order.ActiveItemCount() == 0 {
		return nil, nil, newInvalidStateError(orderID, -1, "order has no active items to bill")
	}

	order.RecomputeTotal()

	ticket := &doc.Ticket{
		ID:           "ticket:" + e.ids.NewID(),
		Type:         doc.TypeTicket,
		OrdenID:      order.ID,
		NumeroOrden:  order.Numero,
		Mesa:         order.Mesa,
		Mesero:       order.Mesero,
		Total:        order.Total,
		Estado:       doc.TicketIssued,
		FechaEmision: e.now().UTC(),
	}
	for i := range order.Items {
		if order.Items[i].Counted() {
			ticket.Items = append(ticket.Items, order.Items[i])
		}
	}

	order.Estado = doc.OrderBilling
	order.TicketID = ticket.ID

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, nil, err
	}
	if _, err := e.store.Save(ctx, ticket.ID, doc.PartitionTickets, ticket, docstore.NoRevision); err != nil {
		return nil, nil, fmt.Errorf("write ticket for order %s: %w", orderID, err)
	}
	return order, ticket, nil
}

// MarkPaid closes the happy path: the order transitions to pagada with a
// payment timestamp and the ticket is stamped with the payment detail.
func (e *Engine) MarkPaid(ctx context.Context, orderID string, pago doc.PaymentInfo) (*doc.Order, error) {
	if pago.Metodo == "" {
		return nil, newValidationError("payment metodo is required")
	}

	order, rev, err := e.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Estado != doc.OrderBilling {
		return nil, newInvalidStateError(orderID, -1,
			fmt.Sprintf("only enviado_cobro orders can be paid, estado is %s", order.Estado))
	}

	if !pago.Recibido.IsZero() {
		pago.Cambio = pago.Recibido.Sub(order.Total)
	}

	paidAt := e.now().UTC()
	order.Estado = doc.OrderPaid
	order.FechaPago = &paidAt

	if _, err := e.saveOrder(ctx, order, rev); err != nil {
		return nil, err
	}

	var ticket doc.Ticket
	trev, err := docstore.GetAs(ctx, e.store, order.TicketID, &ticket)
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", order.TicketID, err)
	}
	ticket.Estado = doc.TicketPaid
	ticket.FechaPago = &paidAt
	ticket.Pago = &pago
	if _, err := e.store.Save(ctx, ticket.ID, doc.PartitionTickets, &ticket, trev); err != nil {
		if docstore.IsConflict(err) {
			return nil, newConflictError(ticket.ID, err)
		}
		return nil, fmt.Errorf("stamp ticket %s: %w", ticket.ID, err)
	}
	return order, nil
}

// GetOrder loads an order and its current revision.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*doc.Order, docstore.Revision, error) {
	return e.loadOrder(ctx, orderID)
}

func (e *Engine) buildItem(ctx context.Context, spec ItemSpec) (*doc.OrderItem, error) {
	if spec.Cantidad <= 0 {
		return nil, newValidationError("item cantidad must be positive")
	}
	dish, err := e.loadDish(ctx, spec.PlatilloID)
	if err != nil {
		return nil, err
	}
	if !dish.Activo {
		return nil, newInvalidStateError("", -1, fmt.Sprintf("dish %q is inactive", dish.ID))
	}

	item := &doc.OrderItem{
		PlatilloID:     dish.ID,
		Nombre:         dish.Nombre,
		PrecioUnitario: dish.Precio,
		Cantidad:       spec.Cantidad,
		Comentarios:    spec.Comentarios,
		Estacion:       dish.Estacion,
		Estado:         doc.ItemActive,
	}
	if spec.PrecioOverride != nil {
		original := dish.Precio
		item.PrecioOriginal = &original
		item.PrecioUnitario = *spec.PrecioOverride
		item.PromocionID = spec.PromocionID
	}
	return item, nil
}

func (e *Engine) loadDish(ctx context.Context, dishID string) (*doc.Dish, error) {
	var dish doc.Dish
	if _, err := docstore.GetAs(ctx, e.store, dishID, &dish); err != nil {
		if docstore.IsNotFound(err) {
			return nil, newNotFoundError(fmt.Sprintf("dish %q not found", dishID), err)
		}
		return nil, fmt.Errorf("load dish %q: %w", dishID, err)
	}
	return &dish, nil
}

func (e *Engine) loadOrder(ctx context.Context, orderID string) (*doc.Order, docstore.Revision, error) {
	var order doc.Order
	rev, err := docstore.GetAs(ctx, e.store, orderID, &order)
	if err != nil {
		if docstore.IsNotFound(err) {
			return nil, docstore.NoRevision, newNotFoundError(fmt.Sprintf("order %q not found", orderID), err)
		}
		return nil, docstore.NoRevision, fmt.Errorf("load order %q: %w", orderID, err)
	}
	return &order, rev, nil
}

func (e *Engine) saveOrder(ctx context.Context, order *doc.Order, rev docstore.Revision) (docstore.Revision, error) {
	newRev, err := e.store.Save(ctx, order.ID, doc.PartitionOrders, order, rev)
	if err != nil {
		if docstore.IsConflict(err) {
			return docstore.NoRevision, newConflictError(order.ID, err)
		}
		return docstore.NoRevision, fmt.Errorf("save order %q: %w", order.ID, err)
	}
	return newRev, nil
}

func (e *Engine) currentUser(ctx context.Context) (auth.User, error) {
	user, err := e.auth.CurrentUser(ctx)
	if err != nil {
		return auth.User{}, fmt.Errorf("resolve current user: %w", err)
	}
	return user, nil
}
