package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// closureDateLayout is the calendar-day format of a Z-closure.
const closureDateLayout = "2006-01-02"

// GenerateClosure snapshots the paid tickets of one venue-local calendar
// day into an immutable Z-closure. A day with no paid tickets still
// produces a valid, persisted closure (Closure.Empty reports it; callers
// decide whether to warn or block).
//
// The engine does not enforce at-most-once per date: re-running a date
// creates a new closure with a new number over the same ticket set.
// Callers wanting that invariant must check ClosuresForDate first.
func (e *Engine) GenerateClosure(ctx context.Context, fecha string) (*doc.Closure, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(closureDateLayout, fecha, e.loc)
	if err != nil {
		return nil, newValidationError(fmt.Sprintf("bad closure date %q, want YYYY-MM-DD", fecha))
	}
	start := day
	end := day.AddDate(0, 0, 1)

	rows, err := e.store.QueryByPartition(ctx, doc.PartitionTickets)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}

	total := decimal.Zero
	var ordenes []int
	for _, row := range rows {
		var t doc.Ticket
		if err := json.Unmarshal(row.Doc, &t); err != nil {
			return nil, fmt.Errorf("decode ticket %q: %w", row.ID, err)
		}
		if t.Estado != doc.TicketPaid || t.FechaPago == nil {
			continue
		}
		paid := t.FechaPago.In(e.loc)
		if paid.Before(start) || !paid.Before(end) {
			continue
		}
		total = total.Add(t.Total)
		ordenes = append(ordenes, t.NumeroOrden)
	}
	sort.Ints(ordenes)

	numero, err := e.NextClosureNumber(ctx)
	if err != nil {
		return nil, err
	}

	closure := &doc.Closure{
		ID:              "cierre:" + e.ids.NewID(),
		Type:            doc.TypeClosure,
		Numero:          numero,
		Fecha:           fecha,
		FechaGeneracion: e.now().UTC(),
		Actor:           user.ID,
		NumTickets:      len(ordenes),
		Total:           total,
		Ordenes:         ordenes,
	}
	if _, err := e.store.Save(ctx, closure.ID, doc.PartitionClosures, closure, docstore.NoRevision); err != nil {
		return nil, fmt.Errorf("write closure: %w", err)
	}
	return closure, nil
}

// ClosuresForDate returns every closure already generated for a date.
func (e *Engine) ClosuresForDate(ctx context.Context, fecha string) ([]doc.Closure, error) {
	all, err := e.Closures(ctx)
	if err != nil {
		return nil, err
	}
	var out []doc.Closure
	for _, c := range all {
		if c.Fecha == fecha {
			out = append(out, c)
		}
	}
	return out, nil
}

// Closures returns every closure, ordered by closure number.
func (e *Engine) Closures(ctx context.Context) ([]doc.Closure, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionClosures)
	if err != nil {
		return nil, fmt.Errorf("query closures: %w", err)
	}
	out := make([]doc.Closure, 0, len(rows))
	for _, row := range rows {
		var c doc.Closure
		if err := json.Unmarshal(row.Doc, &c); err != nil {
			return nil, fmt.Errorf("decode closure %q: %w", row.ID, err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}
