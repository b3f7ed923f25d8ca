package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// Sequence names backed by counter documents.
const (
	seqOrders   = "ordenes"
	seqClosures = "cierres_z"
)

// NextOrderNumber allocates the next sequential order number.
//
// Allocation is a revision-checked increment of a single counter
// document, retried on conflict up to the configured budget. This
// replaces the legacy max-scan ("highest numero_orden seen across the
// order and ticket partitions, plus one"), which had no cross-terminal
// mutual exclusion and could hand two terminals the same number. The
// max-scan survives only as the seed when no counter document exists
// yet, so numbering continues from pre-existing data.
func (e *Engine) NextOrderNumber(ctx context.Context) (int, error) {
	return e.nextNumber(ctx, seqOrders, e.maxOrderNumber)
}

// NextClosureNumber allocates the next sequential Z-closure number.
func (e *Engine) NextClosureNumber(ctx context.Context) (int, error) {
	return e.nextNumber(ctx, seqClosures, e.maxClosureNumber)
}

func (e *Engine) nextNumber(ctx context.Context, nombre string, seed func(context.Context) (int, error)) (int, error) {
	id := doc.CounterID(nombre)
	for attempt := 0; attempt < e.allocRetries; attempt++ {
		var counter doc.Counter
		rev, err := docstore.GetAs(ctx, e.store, id, &counter)
		switch {
		case docstore.IsNotFound(err):
			high, err := seed(ctx)
			if err != nil {
				return 0, err
			}
			counter = doc.Counter{
				ID:     id,
				Type:   doc.TypeCounter,
				Nombre: nombre,
				Valor:  high + 1,
			}
			if _, err := e.store.Save(ctx, id, doc.PartitionCounters, &counter, docstore.NoRevision); err != nil {
				if docstore.IsConflict(err) {
					continue // another terminal seeded first
				}
				return 0, fmt.Errorf("seed counter %q: %w", nombre, err)
			}
			return counter.Valor, nil
		case err != nil:
			return 0, fmt.Errorf("load counter %q: %w", nombre, err)
		}

		counter.Valor++
		if _, err := e.store.Save(ctx, id, doc.PartitionCounters, &counter, rev); err != nil {
			if docstore.IsConflict(err) {
				continue
			}
			return 0, fmt.Errorf("increment counter %q: %w", nombre, err)
		}
		return counter.Valor, nil
	}
	return 0, &OpError{
		Code:      ErrCodeAllocationExhausted,
		Message:   fmt.Sprintf("could not allocate %s number after %d attempts", nombre, e.allocRetries),
		ItemIndex: -1,
	}
}

// maxOrderNumber scans the order and ticket partitions for the highest
// numero_orden. Tickets are included because historic databases carried
// tickets whose orders were purged.
func (e *Engine) maxOrderNumber(ctx context.Context) (int, error) {
	high := 0

	rows, err := e.store.QueryByPartition(ctx, doc.PartitionOrders)
	if err != nil {
		return 0, fmt.Errorf("scan orders: %w", err)
	}
	for _, row := range rows {
		var o doc.Order
		if err := json.Unmarshal(row.Doc, &o); err != nil {
			return 0, fmt.Errorf("decode order %q: %w", row.ID, err)
		}
		if o.Numero > high {
			high = o.Numero
		}
	}

	rows, err = e.store.QueryByPartition(ctx, doc.PartitionTickets)
	if err != nil {
		return 0, fmt.Errorf("scan tickets: %w", err)
	}
	for _, row := range rows {
		var t doc.Ticket
		if err := json.Unmarshal(row.Doc, &t); err != nil {
			return 0, fmt.Errorf("decode ticket %q: %w", row.ID, err)
		}
		if t.NumeroOrden > high {
			high = t.NumeroOrden
		}
	}
	return high, nil
}

func (e *Engine) maxClosureNumber(ctx context.Context) (int, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionClosures)
	if err != nil {
		return 0, fmt.Errorf("scan closures: %w", err)
	}
	high := 0
	for _, row := range rows {
		var c doc.Closure
		if err := json.Unmarshal(row.Doc, &c); err != nil {
			return 0, fmt.Errorf("decode closure %q: %w", row.ID, err)
		}
		if c.Numero > high {
			high = c.Numero
		}
	}
	return high, nil
}
