package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wzamorag/tjAdmin-sub001/internal/catalog"
	"github.com/wzamorag/tjAdmin-sub001/internal/doc"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
)

// RecordMovement appends one signed stock movement for an ingredient.
// Positive cantidad is an entrada, negative a salida. cantidad is
// interpreted in unidad and normalized through the coarse-unit conversion
// table before it is written, so every movement of an ingredient folds in
// a single unit. The resolved unit must match the ingredient's declared
// unit.
//
// Movements are append-only: each call writes a new document, so
// concurrent recordings never conflict.
func (e *Engine) RecordMovement(ctx context.Context, ingredienteID string, cantidad decimal.Decimal, unidad, motivo, referencia string) (*doc.InventoryMovement, error) {
	if motivo == "" {
		return nil, newValidationError("movement motivo is required")
	}
	if cantidad.IsZero() {
		return nil, newValidationError("movement cantidad must be nonzero")
	}
	ing, err := e.loadIngredient(ctx, ingredienteID)
	if err != nil {
		return nil, err
	}
	user, err := e.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	fineUnidad, fineCantidad, _ := catalog.Convert(unidad, cantidad)
	if fineUnidad != ing.Unidad {
		return nil, newValidationError(fmt.Sprintf(
			"movement unit %q resolves to %q but ingredient %q is stocked in %q",
			unidad, fineUnidad, ingredienteID, ing.Unidad))
	}
	mov := &doc.InventoryMovement{
		ID:            "mov:" + e.ids.NewID(),
		Type:          doc.TypeMovement,
		IngredienteID: ingredienteID,
		Cantidad:      fineCantidad,
		Unidad:        fineUnidad,
		Motivo:        motivo,
		Actor:         user.ID,
		Fecha:         e.now().UTC(),
		Referencia:    referencia,
	}
	if _, err := e.store.Save(ctx, mov.ID, doc.PartitionMovements, mov, docstore.NoRevision); err != nil {
		return nil, fmt.Errorf("record movement for %q: %w", ingredienteID, err)
	}
	return mov, nil
}

// CurrentStock folds every movement of an ingredient by addition. There
// is no cached running total; recomputation per query is the baseline
// that keeps stock auditable and idempotent under replay.
func (e *Engine) CurrentStock(ctx context.Context, ingredienteID string) (decimal.Decimal, error) {
	if _, err := e.loadIngredient(ctx, ingredienteID); err != nil {
		return decimal.Zero, err
	}
	movs, err := e.movementsFor(ctx, ingredienteID)
	if err != nil {
		return decimal.Zero, err
	}
	stock := decimal.Zero
	for i := range movs {
		stock = stock.Add(movs[i].Cantidad)
	}
	return stock, nil
}

// Movements returns every recorded movement for an ingredient.
func (e *Engine) Movements(ctx context.Context, ingredienteID string) ([]doc.InventoryMovement, error) {
	if _, err := e.loadIngredient(ctx, ingredienteID); err != nil {
		return nil, err
	}
	return e.movementsFor(ctx, ingredienteID)
}

func (e *Engine) movementsFor(ctx context.Context, ingredienteID string) ([]doc.InventoryMovement, error) {
	rows, err := e.store.QueryByPartition(ctx, doc.PartitionMovements)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	var out []doc.InventoryMovement
	for _, row := range rows {
		var mov doc.InventoryMovement
		if err := json.Unmarshal(row.Doc, &mov); err != nil {
			return nil, fmt.Errorf("decode movement %q: %w", row.ID, err)
		}
		if mov.IngredienteID == ingredienteID {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (e *Engine) loadIngredient(ctx context.Context, ingredienteID string) (*doc.Ingredient, error) {
	var ing doc.Ingredient
	if _, err := docstore.GetAs(ctx, e.store, ingredienteID, &ing); err != nil {
		if docstore.IsNotFound(err) {
			return nil, newNotFoundError(fmt.Sprintf("ingredient %q not found", ingredienteID), err)
		}
		return nil, fmt.Errorf("load ingredient %q: %w", ingredienteID, err)
	}
	return &ing, nil
}
