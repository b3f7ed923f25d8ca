package doc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document type discriminators for closures and counters.
const (
	TypeClosure = "cierre_z"
	TypeCounter = "contador"
)

// Closure is the immutable daily Z-report: an aggregate over the paid
// tickets of one venue-local calendar day. Re-running a closure for an
// already-closed date produces a new closure with a new number; the
// engine does not enforce at-most-once per date.
type Closure struct {
	ID     string `json:"_id"`
	Type   string `json:"type"`
	Numero int    `json:"numero_cierre_z"`

	// Fecha is the venue-local calendar day, formatted 2006-01-02.
	Fecha string `json:"fecha"`

	FechaGeneracion time.Time `json:"fecha_generacion"`
	Actor           string    `json:"actor"`

	NumTickets int             `json:"num_tickets"`
	Total      decimal.Decimal `json:"total"`

	// Ordenes lists the numero_orden of every included ticket.
	Ordenes []int `json:"ordenes"`
}

// Empty reports whether the closure covered a day with no paid tickets.
// An empty closure is still valid and persisted; callers decide whether
// to warn or block.
func (c *Closure) Empty() bool { return c.NumTickets == 0 }

// Counter is the single document backing one sequence (orders, closures).
// Valor is the last number handed out; allocation is a revision-checked
// increment retried on conflict.
type Counter struct {
	ID     string `json:"_id"`
	Type   string `json:"type"`
	Nombre string `json:"nombre"`
	Valor  int    `json:"valor"`
}

// CounterID returns the fixed document id for a named sequence.
func CounterID(nombre string) string { return "contador:" + nombre }
