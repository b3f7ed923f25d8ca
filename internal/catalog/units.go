package catalog

import "github.com/shopspring/decimal"

// Conversion maps a coarse unit of measure to a fine unit count. The
// table is one-directional: coarse units are expanded when consuming or
// reverting stock, never recomposed. Ingredients whose unit does not
// appear here are consumed in their native unit, unconverted.
type Conversion struct {
	Unidad string
	Factor decimal.Decimal
}

var conversions = map[string]Conversion{
	// A caja holds 24 sellable units.
	"caja": {Unidad: "unidad", Factor: decimal.NewFromInt(24)},
	// Full and half bottles expand to milliliters.
	"botella":       {Unidad: "ml", Factor: decimal.NewFromInt(750)},
	"media_botella": {Unidad: "ml", Factor: decimal.NewFromInt(375)},
}

// Convert expands a quantity expressed in unidad into its fine unit.
// Returns the input unchanged (ok=false) when no conversion applies.
func Convert(unidad string, cantidad decimal.Decimal) (string, decimal.Decimal, bool) {
	c, ok := conversions[unidad]
	if !ok {
		return unidad, cantidad, false
	}
	return c.Unidad, cantidad.Mul(c.Factor), true
}
