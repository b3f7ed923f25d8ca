package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// Read-only queries consumed by the reporting surface. Reporting has no
// write access: these return decoded copies, never revisions.

// OrdersBetween returns orders created in [from, to), ordered by number.
func (e *Engine) OrdersBetween(ctx context.Context, from, to time.Time) ([]doc.Order, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	var out []doc.Order
	for _, row := range rows {
		var o doc.Order
		if err := json.Unmarshal(row.Doc, &o); err != nil {
			return nil, fmt.Errorf("decode order %q: %w", row.ID, err)
		}
		if o.FechaCreacion.Before(from) || !o.FechaCreacion.Before(to) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

// TicketsBetween returns tickets issued in [from, to), ordered by order
// number.
func (e *Engine) TicketsBetween(ctx context.Context, from, to time.Time) ([]doc.Ticket, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionTickets)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	var out []doc.Ticket
	for _, row := range rows {
		var t doc.Ticket
		if err := json.Unmarshal(row.Doc, &t); err != nil {
			return nil, fmt.Errorf("decode ticket %q: %w", row.ID, err)
		}
		if t.FechaEmision.Before(from) || !t.FechaEmision.Before(to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroOrden < out[j].NumeroOrden })
	return out, nil
}

// MovementsBetween returns inventory movements recorded in [from, to),
// in recording order.
func (e *Engine) MovementsBetween(ctx context.Context, from, to time.Time) ([]doc.InventoryMovement, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionMovements)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	var out []doc.InventoryMovement
	for _, row := range rows {
		var m doc.InventoryMovement
		if err := json.Unmarshal(row.Doc, &m); err != nil {
			return nil, fmt.Errorf("decode movement %q: %w", row.ID, err)
		}
		if m.Fecha.Before(from) || !m.Fecha.Before(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

// GetTicket loads one ticket.
func (e *Engine) GetTicket(ctx context.Context, ticketID string) (*doc.Ticket, error) {
	var t doc.Ticket
	if _, err := docstore.GetAs(ctx, e.store, ticketID, &t); err != nil {
		if docstore.IsNotFound(err) {
			return nil, newNotFoundError(fmt.Sprintf("ticket %q not found", ticketID), err)
		}
		return nil, fmt.Errorf("load ticket %q: %w", ticketID, err)
	}
	return &t, nil
}
