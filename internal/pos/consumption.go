package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wzamorag/tjAdmin-sub001/internal/catalog"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
)

// Consumption is one ingredient requirement resolved for a concrete
// quantity of a dish, already normalized to the fine unit when the
// recipe's unit appears in the conversion table.
type Consumption struct {
	IngredienteID string
	Cantidad      decimal.Decimal
	Unidad        string
}

// ConsumedIngredients resolves a dish's recipe and scales every line by
// cantidad units of the dish.
func (e *Engine) ConsumedIngredients(ctx context.Context, dishID string, cantidad int) ([]Consumption, error) {
	if cantidad <= 0 {
		return nil, newValidationError("cantidad must be positive")
	}

	rows, err := e.store.QueryByPartition(ctx, doc.PartitionRelations)
	if err != nil {
		return nil, fmt.Errorf("query recipe for %q: %w", dishID, err)
	}

	factor := decimal.NewFromInt(int64(cantidad))
	var out []Consumption
	for _, row := range rows {
		var rel doc.DishIngredient
		if err := json.Unmarshal(row.Doc, &rel); err != nil {
			return nil, fmt.Errorf("decode relation %q: %w", row.ID, err)
		}
		if rel.PlatilloID != dishID {
			continue
		}
		unidad, qty, _ := catalog.Convert(rel.Unidad, rel.Cantidad.Mul(factor))
		out = append(out, Consumption{
			IngredienteID: rel.IngredienteID,
			Cantidad:      qty,
			Unidad:        unidad,
		})
	}
	return out, nil
}

// deductItem records negative movements for an item's resolved
// consumption, tagged with the order it belongs to.
func (e *Engine) deductItem(ctx context.Context, order *doc.Order, item *doc.OrderItem) error {
	return e.moveForItem(ctx, order, item, false)
}

// restockItem reverses deductItem: positive movements equal to what was
// originally deducted, tagged with the order reference.
func (e *Engine) restockItem(ctx context.Context, order *doc.Order, item *doc.OrderItem) error {
	return e.moveForItem(ctx, order, item, true)
}

func (e *Engine) moveForItem(ctx context.Context, order *doc.Order, item *doc.OrderItem, restock bool) error {
	consumed, err := e.ConsumedIngredients(ctx, item.PlatilloID, item.Cantidad)
	if err != nil {
		return err
	}
	motivo := fmt.Sprintf("consumo orden %d", order.Numero)
	if restock {
		motivo = fmt.Sprintf("reversion anulacion orden %d", order.Numero)
	}
	for _, c := range consumed {
		qty := c.Cantidad.Neg()
		if restock {
			qty = c.Cantidad
		}
		// Consumption rows are already normalized; record in the
		// resolved unit as-is.
		if _, err := e.RecordMovement(ctx, c.IngredienteID, qty, c.Unidad, motivo, order.ID); err != nil {
			return err
		}
	}
	return nil
}
