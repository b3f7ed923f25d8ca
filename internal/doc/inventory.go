package doc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document type discriminators for the inventory family.
const (
	TypeMovement   = "movimiento"
	TypeRelation   = "platillo_ingrediente"
	TypeDish       = "platillo"
	TypeIngredient = "ingrediente"
)

// InventoryMovement is one signed, append-only stock change. Positive
// cantidad is an entrada, negative a salida. Movements are never updated
// or deleted; current stock is the fold of all movements for an
// ingredient, which keeps stock auditable and replay-idempotent.
type InventoryMovement struct {
	ID            string          `json:"_id"`
	Type          string          `json:"type"`
	IngredienteID string          `json:"ingrediente_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Unidad        string          `json:"unidad"`
	Motivo        string          `json:"motivo"`
	Actor         string          `json:"actor"`
	Fecha         time.Time       `json:"fecha"`

	// Referencia ties consumption/reversal movements back to the order
	// or ticket that caused them.
	Referencia string `json:"referencia,omitempty"`
}

// DishIngredient is one recipe line: how much of an ingredient one unit
// of a dish consumes. Relations for a dish are recreated wholesale on
// edit (old lines deleted, new lines written).
type DishIngredient struct {
	ID            string          `json:"_id"`
	Type          string          `json:"type"`
	PlatilloID    string          `json:"platillo_id"`
	IngredienteID string          `json:"ingrediente_id"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Unidad        string          `json:"unidad"`
}

// Dish is a sellable menu entry. Precio is the list price snapshotted
// onto order items when they are added.
type Dish struct {
	ID       string          `json:"_id"`
	Type     string          `json:"type"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Estacion Station         `json:"estacion"`
	Activo   bool            `json:"activo"`
}

// Ingredient is a stocked raw material. Unidad is its native unit of
// measure; movements for the ingredient are recorded in the fine unit
// when a conversion applies, otherwise in this unit.
type Ingredient struct {
	ID     string `json:"_id"`
	Type   string `json:"type"`
	Nombre string `json:"nombre"`
	Unidad string `json:"unidad"`
}
